package config

type MapsConfig struct {
	GoogleMaps *GoogleMapsConfig `yaml:"google_maps"`
	Region     string            `yaml:"region"`
}

type GoogleMapsConfig struct {
	APIKey string `yaml:"api_key"`
}

func (c *MapsConfig) Enabled() bool {
	return c.GoogleMaps != nil && c.GoogleMaps.APIKey != ""
}

func loadMapsConfig() *MapsConfig {
	return &MapsConfig{
		GoogleMaps: &GoogleMapsConfig{
			APIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		},
		Region: getEnv("MAPS_REGION", "in"),
	}
}

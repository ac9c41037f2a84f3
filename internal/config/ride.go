package config

type RideConfig struct {
	DefaultFare    float64            `yaml:"default_fare"`
	VehicleTariffs map[string]float64 `yaml:"vehicle_tariffs"`
	OTPLength      int                `yaml:"otp_length"`
	DriverLat      float64            `yaml:"driver_lat"`
	DriverLng      float64            `yaml:"driver_lng"`
	GeocodeOnBook  bool               `yaml:"geocode_on_book"`
}

func loadRideConfig() *RideConfig {
	return &RideConfig{
		DefaultFare: getEnvAsFloat64("RIDE_DEFAULT_FARE", 50),
		VehicleTariffs: map[string]float64{
			"bike": getEnvAsFloat64("RIDE_FARE_BIKE", 40),
			"auto": getEnvAsFloat64("RIDE_FARE_AUTO", 70),
			"cab":  getEnvAsFloat64("RIDE_FARE_CAB", 120),
		},
		OTPLength:     getEnvAsInt("RIDE_OTP_LENGTH", 4),
		DriverLat:     getEnvAsFloat64("DRIVER_DEFAULT_LAT", 28.9931),
		DriverLng:     getEnvAsFloat64("DRIVER_DEFAULT_LNG", 77.0151),
		GeocodeOnBook: getEnvAsBool("RIDE_GEOCODE_ON_BOOK", true),
	}
}

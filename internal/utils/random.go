package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	numberBytes   = "0123456789"
	nonZeroDigits = "123456789"
)

func GenerateRandomNumericString(length int) string {
	return generateRandom(length, numberBytes)
}

// GenerateRideOTP returns a numeric code of the given length with no leading
// zero, so it survives clients that treat it as a number.
func GenerateRideOTP(length int) string {
	if length <= 0 {
		length = RideOTPLength
	}
	return generateRandom(1, nonZeroDigits) + generateRandom(length-1, numberBytes)
}

func generateRandom(length int, charset string) string {
	if length <= 0 {
		return ""
	}
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := range result {
		num, err := rand.Int(rand.Reader, charsetLength)
		if err != nil {
			panic("crypto/rand unavailable: " + err.Error())
		}
		result[i] = charset[num.Int64()]
	}

	return string(result)
}

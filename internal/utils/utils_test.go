package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateRideOTP(t *testing.T) {
	for i := 0; i < 200; i++ {
		otp := GenerateRideOTP(4)
		require.Len(t, otp, 4)
		assert.NotEqual(t, byte('0'), otp[0])
		for _, ch := range otp {
			assert.True(t, ch >= '0' && ch <= '9')
		}
	}
	assert.Len(t, GenerateRideOTP(0), RideOTPLength)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()
	token, err := GenerateAccessToken(userID, "driver", "9876543210", "secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)

	claims, err := ValidateToken(token.Token, "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "driver", claims.Role)

	_, err = ValidateToken(token.Token, "other-secret")
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateAccessToken(primitive.NewObjectID(), "rider", "9876543210", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token.Token, "secret")
	assert.Error(t, err)
}

func TestPhoneHelpers(t *testing.T) {
	assert.True(t, IsValidPhone("9876543210"))
	assert.True(t, IsValidPhone("+91 98765-43210"))
	assert.False(t, IsValidPhone("12"))
	assert.False(t, IsValidPhone("phone"))

	assert.Equal(t, "+919876543210", ToE164("98765 43210", "+91"))
	assert.Equal(t, "+14155550100", ToE164("+1 415 555 0100", "+91"))
	assert.Equal(t, "******3210", MaskPhone("9876543210"))
}

func TestErrorResponseEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	NotFoundResponse(c, "Ride not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, StatusError, body.Status)
	assert.Equal(t, "Ride not found", body.Message)
	require.NotNil(t, body.Error)
	assert.Equal(t, CodeNotFound, body.Error.Code)
}

func TestSuccessResponseKeepsNullData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessResponse(c, "No active ride", nil)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data, present := body["data"]
	assert.True(t, present)
	assert.Nil(t, data)
}

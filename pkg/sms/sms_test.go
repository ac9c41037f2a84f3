package sms

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridedeck/pkg/logger"
)

func TestLogProvider(t *testing.T) {
	p := NewLogProvider(logger.Discard())

	resp, err := p.SendSMS(context.Background(), &SMSRequest{To: "+919876543210", Message: "Your OTP is 1234", Type: TypeOTP})
	require.NoError(t, err)
	assert.Equal(t, "logged", resp.Status)
	assert.NotEmpty(t, resp.MessageID)
}

func TestSNSPublishInputCarriesMessage(t *testing.T) {
	p := &AWSSNSProvider{senderID: "RIDEDK"}

	input := p.publishInput(&SMSRequest{To: "+919876543210", Message: "hello"})
	assert.Equal(t, "+919876543210", aws.ToString(input.PhoneNumber))
	assert.Equal(t, "hello", aws.ToString(input.Message))
	assert.Equal(t, "RIDEDK", aws.ToString(input.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue))
}

func TestTwilioFromNumberFallback(t *testing.T) {
	p := NewTwilioProvider("AC123", "token", "+15550001111")
	assert.Equal(t, "+15550001111", p.getFromNumber(""))
	assert.Equal(t, "+15550002222", p.getFromNumber("+15550002222"))
	assert.Equal(t, "twilio", p.Name())
}

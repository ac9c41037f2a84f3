package sms

import (
	"context"
	"time"

	"ridedeck/pkg/logger"
)

// LogProvider writes messages to the log instead of sending them.
type LogProvider struct {
	logger *logger.Logger
}

func NewLogProvider(log *logger.Logger) *LogProvider {
	return &LogProvider{logger: log}
}

func (l *LogProvider) Name() string {
	return "log"
}

func (l *LogProvider) SendSMS(ctx context.Context, request *SMSRequest) (*SMSResponse, error) {
	l.logger.WithFields(map[string]interface{}{
		"to":   request.To,
		"type": request.Type,
		"body": request.Message,
	}).Info("SMS (not sent)")

	return &SMSResponse{
		MessageID: "log-" + time.Now().Format("20060102150405.000000"),
		Status:    "logged",
	}, nil
}

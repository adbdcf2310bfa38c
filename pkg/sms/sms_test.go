package sms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogSender_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewLogSender(zap.New(core))
	ctx := context.Background()

	t.Run("记录短信", func(t *testing.T) {
		err := sender.Send(ctx, "13800138000", "SMS_BOOKING_CONFIRMED", map[string]string{
			"booking_no": "BK20250601",
		})
		require.NoError(t, err)

		sent := sender.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "13800138000", sent[0].Phone)
		assert.Equal(t, "BK20250601", sent[0].Params["booking_no"])

		entries := logs.FilterMessage("SMS sent").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "138****8000", entries[0].ContextMap()["phone"])
	})

	t.Run("空手机号", func(t *testing.T) {
		err := sender.Send(ctx, "  ", "SMS_BOOKING_CONFIRMED", nil)
		assert.ErrorIs(t, err, ErrInvalidPhone)
		assert.Len(t, sender.Sent(), 1)
	})
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"13800138000", "138****8000"},
		{"+8613800138000", "+86*******8000"},
		{"12345", "12345"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskPhone(tt.in))
	}
}

func TestNewAliyunSender(t *testing.T) {
	sender, err := NewAliyunSender(&Config{
		AccessKeyID:     "test-key",
		AccessKeySecret: "test-secret",
		SignName:        "酒店预订",
	})
	require.NoError(t, err)
	assert.Equal(t, "酒店预订", sender.signName)

	err = sender.Send(context.Background(), "", "SMS_BOOKING_CONFIRMED", nil)
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		want     string
	}{
		{"无底层错误", New(1001, "参数错误"), "[1001] 参数错误"},
		{"带底层错误", Wrap(1004, "数据库错误", stderrors.New("connection timeout")), "[1004] 数据库错误: connection timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.appError.Error())
		})
	}
}

func TestAppError_WithHelpers(t *testing.T) {
	cause := stderrors.New("timeout")

	err := ErrProviderCallFailed.WithError(cause)
	assert.Equal(t, ErrProviderCallFailed.Code, err.Code)
	assert.Same(t, cause, stderrors.Unwrap(err))
	assert.Nil(t, ErrProviderCallFailed.Err, "原始错误变量不能被修改")

	msg := ErrInvalidParams.WithMessage("退房日期必须晚于入住日期")
	assert.Equal(t, "退房日期必须晚于入住日期", msg.Message)
	assert.Equal(t, "参数错误", ErrInvalidParams.Message)

	withData := ErrRoomUnavailable.WithData([]string{"2025-06-01"}).WithMessage("房间已被预订")
	assert.Equal(t, []string{"2025-06-01"}, withData.Data)
	assert.Nil(t, ErrRoomUnavailable.Data)
}

func TestAppError_Is(t *testing.T) {
	t.Run("派生错误按错误码匹配", func(t *testing.T) {
		err := ErrRoomUnavailable.WithMessage("房间已被预订")
		assert.True(t, stderrors.Is(err, ErrRoomUnavailable))
		assert.False(t, stderrors.Is(err, ErrBookingNotCancellable))
	})

	t.Run("多层包装后仍可匹配", func(t *testing.T) {
		err := fmt.Errorf("create booking: %w", ErrGuestCapacityExceeded.WithError(stderrors.New("3 > 2")))
		assert.True(t, Is(err, ErrGuestCapacityExceeded))
		assert.True(t, IsAppError(err))
		assert.Equal(t, ErrGuestCapacityExceeded.Code, GetAppError(err).Code)
	})

	t.Run("普通错误转换为未知错误", func(t *testing.T) {
		err := GetAppError(stderrors.New("boom"))
		require.NotNil(t, err)
		assert.Equal(t, ErrUnknown.Code, err.Code)
	})
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{ErrInvalidParams, http.StatusUnprocessableEntity},
		{ErrBookingNotFound, http.StatusNotFound},
		{ErrRoomNotFound, http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrPermissionDenied, http.StatusForbidden},
		{ErrRoomUnavailable, http.StatusBadRequest},
		{ErrGuestCapacityExceeded, http.StatusBadRequest},
		{ErrBookingNotCancellable, http.StatusConflict},
		{ErrWebhookSignatureInvalid, http.StatusBadRequest},
		{ErrPaymentVerificationFailed, http.StatusBadRequest},
		{ErrProviderCallFailed, http.StatusBadGateway},
		{ErrDatabaseError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Message, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

// Package errors 定义业务错误码和错误处理
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError 应用错误
type AppError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Err     error       `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码匹配，使 errors.Is(err, ErrRoomUnavailable) 对派生错误同样成立
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{Code: e.Code, Message: message, Data: e.Data, Err: e.Err}
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Data: e.Data, Err: err}
}

// WithData 附带返回给客户端的数据，例如冲突的日期
func (e *AppError) WithData(data interface{}) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Data: data, Err: e.Err}
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(1000, "未知错误")
	ErrInvalidParams   = New(1001, "参数错误")
	ErrNotFound        = New(1002, "资源不存在")
	ErrAlreadyExists   = New(1003, "资源已存在")
	ErrDatabaseError   = New(1004, "数据库错误")
	ErrCacheError      = New(1005, "缓存错误")
	ErrInternalError   = New(1006, "内部错误")
	ErrRateLimitExceed = New(1008, "请求过于频繁")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = New(2000, "未登录")
	ErrTokenExpired     = New(2001, "登录已过期")
	ErrTokenInvalid     = New(2002, "无效的令牌")
	ErrPermissionDenied = New(2004, "权限不足")
)

// 用户错误码 (3000-3999)
var (
	ErrUserNotFound = New(3000, "用户不存在")
)

// 支付错误码 (6000-6999)
var (
	ErrPaymentNotFound           = New(6000, "支付记录不存在")
	ErrPaymentFailed             = New(6001, "支付失败")
	ErrRefundFailed              = New(6004, "已取消，退款将由人工处理")
	ErrRefundAmountExceed        = New(6005, "退款金额超限")
	ErrWebhookSignatureInvalid   = New(6007, "支付回调签名无效")
	ErrPaymentVerificationFailed = New(6008, "支付校验失败")
	ErrProviderCallFailed        = New(6009, "支付渠道调用失败")
)

// 预订错误码 (8000-8999)
var (
	ErrBookingNotFound        = New(8000, "预订不存在")
	ErrBookingStatusError     = New(8001, "预订状态异常")
	ErrRoomUnavailable        = New(8004, "房间在所选日期不可用")
	ErrRoomNotFound           = New(8005, "房间不存在")
	ErrGuestCapacityExceeded  = New(8006, "入住人数超出房间容量")
	ErrBookingNotCancellable  = New(8007, "预订无法取消")
	ErrHotelNotFound          = New(8008, "酒店不存在")
	ErrFavoriteTargetNotFound = New(8009, "收藏对象不存在")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrUnknown.WithError(err)
}

// Is 透传标准库 errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// HTTPStatus 返回错误码对应的 HTTP 状态码
func HTTPStatus(err *AppError) int {
	switch err.Code {
	case ErrInvalidParams.Code:
		return http.StatusUnprocessableEntity
	case ErrNotFound.Code, ErrUserNotFound.Code, ErrPaymentNotFound.Code,
		ErrBookingNotFound.Code, ErrRoomNotFound.Code, ErrHotelNotFound.Code,
		ErrFavoriteTargetNotFound.Code:
		return http.StatusNotFound
	case ErrUnauthorized.Code, ErrTokenExpired.Code, ErrTokenInvalid.Code:
		return http.StatusUnauthorized
	case ErrPermissionDenied.Code:
		return http.StatusForbidden
	case ErrRoomUnavailable.Code, ErrGuestCapacityExceeded.Code:
		return http.StatusBadRequest
	case ErrBookingNotCancellable.Code, ErrBookingStatusError.Code, ErrAlreadyExists.Code:
		return http.StatusConflict
	case ErrWebhookSignatureInvalid.Code, ErrPaymentVerificationFailed.Code, ErrPaymentFailed.Code:
		return http.StatusBadRequest
	case ErrProviderCallFailed.Code:
		return http.StatusBadGateway
	case ErrRateLimitExceed.Code:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

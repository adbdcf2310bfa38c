// Package notification 提供基于 asynq 的异步通知：预订确认邮件与降价提醒
package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型
const (
	TypeBookingConfirmation = "notification:booking_confirmation"
	TypePriceDrop           = "notification:price_drop"
)

// QueueNotifications 通知任务队列
const QueueNotifications = "notifications"

// MaxRetry 通知任务最大重试次数
const MaxRetry = 3

// BookingConfirmationPayload 预订确认任务
type BookingConfirmationPayload struct {
	BookingID int64 `json:"booking_id"`
	PaymentID int64 `json:"payment_id"`
}

// PriceDropPayload 降价提醒任务
type PriceDropPayload struct {
	NotificationID int64  `json:"notification_id"`
	UserID         int64  `json:"user_id"`
	RoomID         int64  `json:"room_id"`
	HotelID        int64  `json:"hotel_id"`
	RoomName       string `json:"room_name"`
	HotelName      string `json:"hotel_name"`
	OldPrice       string `json:"old_price"`
	NewPrice       string `json:"new_price"`
}

func taskOptions(extra ...asynq.Option) []asynq.Option {
	opts := []asynq.Option{
		asynq.MaxRetry(MaxRetry),
		asynq.Queue(QueueNotifications),
		asynq.Timeout(30 * time.Second),
	}
	return append(opts, extra...)
}

// NewBookingConfirmationTask 创建预订确认任务，同一预订只会入队一次
func NewBookingConfirmationTask(bookingID, paymentID int64) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(BookingConfirmationPayload{BookingID: bookingID, PaymentID: paymentID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingConfirmation, b)
	return task, taskOptions(asynq.TaskID(fmt.Sprintf("booking-confirmation-%d", bookingID))), nil
}

// NewPriceDropTask 创建降价提醒任务
func NewPriceDropTask(payload PriceDropPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePriceDrop, b)
	return task, taskOptions(), nil
}

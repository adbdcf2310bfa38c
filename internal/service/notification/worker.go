package notification

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/pkg/sms"
)

// retryDelays 第 1、2、3 次重试的间隔
var retryDelays = []time.Duration{60 * time.Second, 120 * time.Second, 300 * time.Second}

// RetryDelay 按已重试次数返回下次重试间隔，超出后保持最后一档
func RetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n < 0 {
		n = 0
	}
	if n >= len(retryDelays) {
		n = len(retryDelays) - 1
	}
	return retryDelays[n]
}

// ErrorHandler 记录任务失败，重试耗尽时记为永久失败
func ErrorHandler(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	taskID, _ := asynq.GetTaskID(ctx)

	if ok && retried >= maxRetry {
		metrics.RecordNotification(task.Type(), "dead")
		logger.Error("Notification permanently failed",
			logger.String("task_type", task.Type()),
			logger.String("task_id", taskID),
			logger.Int("retried", retried),
			logger.Err(err),
		)
		return
	}
	metrics.RecordNotification(task.Type(), "retry")
	logger.Warn("Notification failed, will retry",
		logger.String("task_type", task.Type()),
		logger.String("task_id", taskID),
		logger.Int("retried", retried),
		logger.Err(err),
	)
}

// RedisOpt asynq 使用的 redis 连接参数
func RedisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}
}

// NewServer 创建 asynq 任务服务
func NewServer(redisOpt asynq.RedisConnOpt, cfg *config.QueueConfig) *asynq.Server {
	queues := cfg.Queues
	if len(queues) == 0 {
		queues = map[string]int{QueueNotifications: 6, "default": 1}
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:    concurrency,
		Queues:         queues,
		RetryDelayFunc: RetryDelay,
		ErrorHandler:   asynq.ErrorHandlerFunc(ErrorHandler),
		Logger:         logger.Named("asynq").Sugar(),
	})
}

// Worker 通知任务处理
type Worker struct {
	bookingRepo      *repository.BookingRepository
	userRepo         *repository.UserRepository
	notificationRepo *repository.NotificationRepository
	mailer           Mailer
	sms              sms.Sender
	smsTemplate      string
}

// NewWorker 创建通知任务处理器
func NewWorker(
	bookingRepo *repository.BookingRepository,
	userRepo *repository.UserRepository,
	notificationRepo *repository.NotificationRepository,
	mailer Mailer,
) *Worker {
	return &Worker{
		bookingRepo:      bookingRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		mailer:           mailer,
	}
}

// WithSMS 确认邮件发出后再向住客手机发送短信，短信失败不触发重试
func (w *Worker) WithSMS(sender sms.Sender, templateCode string) *Worker {
	w.sms = sender
	w.smsTemplate = templateCode
	return w
}

// Register 注册任务处理函数
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeBookingConfirmation, w.HandleBookingConfirmation)
	mux.HandleFunc(TypePriceDrop, w.HandlePriceDrop)
}

// HandleBookingConfirmation 发送预订确认邮件并写入站内通知
func (w *Worker) HandleBookingConfirmation(ctx context.Context, task *asynq.Task) error {
	var p BookingConfirmationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	booking, err := w.bookingRepo.GetByIDWithDetails(ctx, p.BookingID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("booking %d not found: %w", p.BookingID, asynq.SkipRetry)
		}
		return err
	}

	view := map[string]interface{}{
		"GuestName": booking.GuestName,
		"BookingNo": booking.BookingNo,
		"CheckIn":   booking.CheckInDate.Format("2006-01-02"),
		"CheckOut":  booking.CheckOutDate.Format("2006-01-02"),
		"Nights":    booking.TotalNights,
		"Guests":    booking.GuestsCount,
		"Amount":    utils.FormatMoney(booking.TotalAmount),
		"Currency":  "",
	}
	if booking.Hotel != nil {
		view["HotelName"] = booking.Hotel.Name
	}
	if booking.Room != nil {
		view["RoomName"] = booking.Room.Name
	}
	if pay := booking.Payment; pay != nil {
		view["Amount"] = utils.FormatMoney(pay.Amount)
		view["Currency"] = strings.ToUpper(pay.Currency)
		view["CardBrand"] = utils.SafeString(pay.CardBrand)
		view["CardLast4"] = utils.SafeString(pay.CardLast4)
	}

	body, err := render(confirmationTmpl, view)
	if err != nil {
		return fmt.Errorf("render confirmation: %v: %w", err, asynq.SkipRetry)
	}

	subject := fmt.Sprintf("预订确认 %s", booking.BookingNo)
	if err := w.mailer.Send(ctx, &Message{To: booking.GuestEmail, Subject: subject, Body: body}); err != nil {
		metrics.RecordNotification(TypeBookingConfirmation, "failed")
		return fmt.Errorf("send confirmation: %w", err)
	}

	err = w.notificationRepo.Create(ctx, nil, &models.Notification{
		UserID:  booking.UserID,
		Type:    models.NotificationTypeBookingConfirmed,
		Title:   "预订已确认",
		Content: fmt.Sprintf("预订 %s 已确认，入住日期 %s", booking.BookingNo, view["CheckIn"]),
	})
	if err != nil {
		logger.Warn("Save confirmation notification failed", logger.BookingID(booking.ID), logger.Err(err))
	}

	if w.sms != nil {
		err := w.sms.Send(ctx, booking.GuestPhone, w.smsTemplate, map[string]string{
			"booking_no": booking.BookingNo,
			"check_in":   view["CheckIn"].(string),
			"check_out":  view["CheckOut"].(string),
		})
		if err != nil {
			logger.Warn("Send confirmation sms failed", logger.BookingID(booking.ID), logger.Err(err))
		}
	}

	metrics.RecordNotification(TypeBookingConfirmation, "sent")
	logger.Info("Booking confirmation sent", logger.BookingID(booking.ID))
	return nil
}

// HandlePriceDrop 发送降价提醒邮件
func (w *Worker) HandlePriceDrop(ctx context.Context, task *asynq.Task) error {
	var p PriceDropPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	user, err := w.userRepo.GetByID(ctx, p.UserID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %d not found: %w", p.UserID, asynq.SkipRetry)
		}
		return err
	}

	body, err := render(priceDropTmpl, map[string]interface{}{
		"UserName":  user.Name,
		"HotelName": p.HotelName,
		"RoomName":  p.RoomName,
		"OldPrice":  p.OldPrice,
		"NewPrice":  p.NewPrice,
	})
	if err != nil {
		return fmt.Errorf("render price drop: %v: %w", err, asynq.SkipRetry)
	}

	if err := w.mailer.Send(ctx, &Message{To: user.Email, Subject: "收藏的房间降价了", Body: body}); err != nil {
		metrics.RecordNotification(TypePriceDrop, "failed")
		return fmt.Errorf("send price drop: %w", err)
	}
	metrics.RecordNotification(TypePriceDrop, "sent")
	return nil
}

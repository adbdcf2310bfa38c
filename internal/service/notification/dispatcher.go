package notification

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/hibiken/asynq"
	"gorm.io/datatypes"

	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/internal/service/hotel"
)

// Enqueuer 任务入队，*asynq.Client 满足该接口
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher 通知分发，负责落库站内通知并投递异步任务
type Dispatcher struct {
	client           Enqueuer
	notificationRepo *repository.NotificationRepository
}

// NewDispatcher 创建通知分发器
func NewDispatcher(client Enqueuer, notificationRepo *repository.NotificationRepository) *Dispatcher {
	return &Dispatcher{client: client, notificationRepo: notificationRepo}
}

// EnqueueBookingConfirmation 投递预订确认邮件任务
func (d *Dispatcher) EnqueueBookingConfirmation(ctx context.Context, bookingID, paymentID int64) error {
	task, opts, err := NewBookingConfirmationTask(bookingID, paymentID)
	if err != nil {
		return err
	}

	info, err := d.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if stderrors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		metrics.RecordNotification(TypeBookingConfirmation, "enqueue_failed")
		return fmt.Errorf("enqueue booking confirmation: %w", err)
	}

	metrics.RecordNotification(TypeBookingConfirmation, "enqueued")
	logger.Info("Booking confirmation enqueued", logger.BookingID(bookingID), logger.String("task_id", info.ID))
	return nil
}

// NotifyPriceDrop 为每个订阅用户写入站内通知并投递提醒任务
func (d *Dispatcher) NotifyPriceDrop(ctx context.Context, event *hotel.PriceDrop) error {
	userIDs := utils.Unique(event.UserIDs)
	if len(userIDs) == 0 {
		return nil
	}

	oldPrice := utils.FormatMoney(event.OldPrice)
	newPrice := utils.FormatMoney(event.NewPrice)
	data, err := json.Marshal(map[string]interface{}{
		"room_id":   event.RoomID,
		"hotel_id":  event.HotelID,
		"old_price": oldPrice,
		"new_price": newPrice,
	})
	if err != nil {
		return err
	}

	notifications := make([]*models.Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		notifications = append(notifications, &models.Notification{
			UserID:  uid,
			Type:    models.NotificationTypePriceDrop,
			Title:   "收藏的房间降价了",
			Content: fmt.Sprintf("%s %s 房间价格由 %s 降至 %s", event.HotelName, event.RoomName, oldPrice, newPrice),
			Data:    datatypes.JSON(data),
		})
	}
	if err := d.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		return fmt.Errorf("save price drop notifications: %w", err)
	}

	var errs []error
	for _, n := range notifications {
		task, opts, err := NewPriceDropTask(PriceDropPayload{
			NotificationID: n.ID,
			UserID:         n.UserID,
			RoomID:         event.RoomID,
			HotelID:        event.HotelID,
			RoomName:       event.RoomName,
			HotelName:      event.HotelName,
			OldPrice:       oldPrice,
			NewPrice:       newPrice,
		})
		if err == nil {
			_, err = d.client.EnqueueContext(ctx, task, opts...)
		}
		if err != nil {
			metrics.RecordNotification(TypePriceDrop, "enqueue_failed")
			errs = append(errs, fmt.Errorf("user %d: %w", n.UserID, err))
			continue
		}
		metrics.RecordNotification(TypePriceDrop, "enqueued")
	}

	logger.Info("Price drop notifications dispatched",
		logger.RoomID(event.RoomID),
		logger.Int("subscribers", len(userIDs)),
		logger.Int("failed", len(errs)),
	)
	return stderrors.Join(errs...)
}

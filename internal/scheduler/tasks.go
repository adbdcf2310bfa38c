package scheduler

import (
	"context"

	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
)

// 任务名称
const (
	TaskCompleteFinishedBookings = "complete_finished_bookings"
	TaskRetryPendingRefunds      = "retry_pending_refunds"
)

// batchSize 每批处理条数
const batchSize = 100

// maxBatches 单次执行最多处理的批数
const maxBatches = 50

// BookingCompleter 将已离店的预订标记为完成
type BookingCompleter interface {
	CompleteFinished(ctx context.Context, limit int) (int, error)
}

// RefundRetrier 重试待退款
type RefundRetrier interface {
	RetryPendingRefunds(ctx context.Context, limit int) (int, error)
}

// TaskHandler 任务处理器
type TaskHandler struct {
	bookings BookingCompleter
	refunds  RefundRetrier
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(bookings BookingCompleter, refunds RefundRetrier) *TaskHandler {
	return &TaskHandler{
		bookings: bookings,
		refunds:  refunds,
	}
}

// CompleteFinishedBookings 已确认且退房日不晚于今天的预订变为已完成
func (h *TaskHandler) CompleteFinishedBookings(ctx context.Context) error {
	total := 0
	for i := 0; i < maxBatches; i++ {
		n, err := h.bookings.CompleteFinished(ctx, batchSize)
		if err != nil {
			return err
		}
		total += n
		if n < batchSize || ctx.Err() != nil {
			break
		}
	}

	if total > 0 {
		logger.Info("Finished bookings completed", logger.Int("count", total))
	}
	return nil
}

// RetryPendingRefunds 重试取消后未完成的退款
// 失败的退款留在原处等待下一轮，不在同一轮内反复重试
func (h *TaskHandler) RetryPendingRefunds(ctx context.Context) error {
	n, err := h.refunds.RetryPendingRefunds(ctx, batchSize)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("Pending refunds processed", logger.Int("count", n))
	}
	return nil
}

// Register 按配置注册全部定时任务
func (h *TaskHandler) Register(s *Scheduler, cfg *config.BookingConfig) {
	s.AddTask(TaskCompleteFinishedBookings, cfg.CompletionEvery(), h.CompleteFinishedBookings)
	s.AddTask(TaskRetryPendingRefunds, cfg.RefundRetryEvery(), h.RetryPendingRefunds)
}

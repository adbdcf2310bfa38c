// Package payment 提供支付意图、支付确认、回调对账与退款服务
package payment

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/clock"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-backend/internal/common/tracing"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/pkg/stripepay"
)

// ConfirmationNotifier 预订确认通知
type ConfirmationNotifier interface {
	EnqueueBookingConfirmation(ctx context.Context, bookingID, paymentID int64) error
}

// Options 支付服务可选配置
type Options struct {
	Currency        string
	ProviderTimeout time.Duration
}

// PaymentService 支付服务
type PaymentService struct {
	db          *gorm.DB
	bookingRepo *repository.BookingRepository
	paymentRepo *repository.PaymentRepository
	provider    stripepay.Provider
	notifier    ConfirmationNotifier
	clock       clock.Clock
	currency    string
	timeout     time.Duration
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	db *gorm.DB,
	bookingRepo *repository.BookingRepository,
	paymentRepo *repository.PaymentRepository,
	provider stripepay.Provider,
	notifier ConfirmationNotifier,
	clk clock.Clock,
	opts Options,
) *PaymentService {
	if clk == nil {
		clk = clock.Real()
	}
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = 10 * time.Second
	}
	return &PaymentService{
		db:          db,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		provider:    provider,
		notifier:    notifier,
		clock:       clk,
		currency:    opts.Currency,
		timeout:     opts.ProviderTimeout,
	}
}

// callProvider 调用支付渠道：限时、记录耗时并开启子 span
func (s *PaymentService) callProvider(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := tracing.Start(ctx, "stripe."+op, tracing.AttrOperation.String(op))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	metrics.ObserveProviderCall(op, err, time.Since(start))
	tracing.RecordError(span, err)
	if err != nil {
		return errors.ErrProviderCallFailed.WithError(err)
	}
	return nil
}

// CreateIntentRequest 创建支付意图请求
type CreateIntentRequest struct {
	BookingID int64 `json:"booking_id" binding:"required,min=1"`
}

// IntentResult 支付意图
type IntentResult struct {
	PaymentID       int64  `json:"payment_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
}

// CreateIntent 为待支付预订创建支付意图
// 同一预订只会有一条支付记录和一个渠道支付意图，重复请求返回已有意图
func (s *PaymentService) CreateIntent(ctx context.Context, actor models.Actor, req *CreateIntentRequest) (*IntentResult, error) {
	ctx, span := tracing.Start(ctx, "payment.create_intent", tracing.AttrBookingID.Int64(req.BookingID))
	defer span.End()

	var payment *models.Payment
	var booking *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = s.bookingRepo.GetForUpdate(ctx, tx, req.BookingID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrBookingNotFound
			}
			return err
		}
		if booking.UserID != actor.UserID && !actor.IsAdmin() {
			return errors.ErrPermissionDenied
		}
		if booking.Status != models.BookingStatusPending {
			return errors.ErrBookingStatusError.WithMessage("仅待支付的预订可以发起支付")
		}

		payment, _, err = s.paymentRepo.FirstOrCreateForBooking(ctx, tx, &models.Payment{
			BookingID:     booking.ID,
			UserID:        booking.UserID,
			Amount:        booking.TotalAmount,
			Currency:      s.currency,
			PaymentMethod: models.PaymentMethodCard,
			Status:        models.PaymentStatusPending,
		})
		return err
	})
	if err != nil {
		tracing.RecordError(span, err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if payment.IsSucceeded() {
		return nil, errors.ErrBookingStatusError.WithMessage("该预订已支付")
	}

	result := &IntentResult{
		PaymentID: payment.ID,
		Amount:    utils.FormatMoney(payment.Amount),
		Currency:  payment.Currency,
	}

	var intent *stripepay.Intent
	if id := payment.IntentID(); id != "" {
		err = s.callProvider(ctx, "retrieve_intent", func(ctx context.Context) error {
			intent, err = s.provider.RetrieveIntent(ctx, id)
			return err
		})
		if err != nil {
			return nil, err
		}
		result.PaymentIntentID = intent.ID
		result.ClientSecret = intent.ClientSecret
		return result, nil
	}

	err = s.callProvider(ctx, "create_intent", func(ctx context.Context) error {
		intent, err = s.provider.CreatePaymentIntent(ctx, &stripepay.CreateIntentRequest{
			Amount:   utils.ToMinorUnits(payment.Amount),
			Currency: payment.Currency,
			Metadata: map[string]string{
				"booking_id": fmt.Sprint(booking.ID),
				"booking_no": booking.BookingNo,
				"payment_id": fmt.Sprint(payment.ID),
			},
			IdempotencyKey: fmt.Sprintf("booking-%d-intent", booking.ID),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND payment_intent_id IS NULL", payment.ID).
		Update("payment_intent_id", intent.ID).Error
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.RecordPayment(metrics.PaymentIntent)
	logger.Info("Payment intent created",
		logger.BookingID(booking.ID),
		logger.PaymentIntent(intent.ID),
		logger.String("amount", payment.Amount.String()),
	)

	result.PaymentIntentID = intent.ID
	result.ClientSecret = intent.ClientSecret
	return result, nil
}

// ConfirmRequest 确认支付请求
type ConfirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id" binding:"required"`
}

// ConfirmResult 确认结果
type ConfirmResult struct {
	Booking *models.Booking `json:"booking"`
	Payment *models.Payment `json:"payment"`
}

// Confirm 客户端支付完成后确认
// 以渠道查询结果为准，不信任客户端传入的状态；已成功的支付直接返回当前状态
func (s *PaymentService) Confirm(ctx context.Context, actor models.Actor, req *ConfirmRequest) (*ConfirmResult, error) {
	ctx, span := tracing.Start(ctx, "payment.confirm", tracing.AttrPaymentIntent.String(req.PaymentIntentID))
	defer span.End()

	payment, err := s.paymentRepo.GetByIntentID(ctx, req.PaymentIntentID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if payment.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, errors.ErrPermissionDenied
	}

	if payment.Status == models.PaymentStatusSucceeded || payment.Status == models.PaymentStatusRefunded {
		metrics.RecordPayment(metrics.PaymentDuplicate)
		return s.state(ctx, payment.BookingID, payment.ID)
	}

	var txn *stripepay.Transaction
	err = s.callProvider(ctx, "retrieve_transaction", func(ctx context.Context) error {
		txn, err = s.provider.RetrieveTransaction(ctx, req.PaymentIntentID)
		return err
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if txn.Status != stripepay.StatusSucceeded {
		return nil, errors.ErrPaymentVerificationFailed.WithMessage("支付尚未完成: " + txn.Status)
	}
	if txn.Amount != utils.ToMinorUnits(payment.Amount) {
		logger.Error("Payment amount mismatch",
			logger.PaymentIntent(req.PaymentIntentID),
			logger.Int64("expected", utils.ToMinorUnits(payment.Amount)),
			logger.Int64("actual", txn.Amount),
		)
		return nil, errors.ErrPaymentVerificationFailed.WithMessage("支付金额不匹配")
	}

	if _, err := s.applySucceeded(ctx, req.PaymentIntentID, txn); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return s.state(ctx, payment.BookingID, payment.ID)
}

func (s *PaymentService) state(ctx context.Context, bookingID, paymentID int64) (*ConfirmResult, error) {
	booking, err := s.bookingRepo.GetByIDWithDetails(ctx, bookingID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return &ConfirmResult{Booking: booking, Payment: payment}, nil
}

// applySucceeded 在事务内把支付置为成功并确认预订，返回本次是否发生了状态变化
// 支付记录加锁后再判断状态，同步确认与回调并发到达时只有一方生效
func (s *PaymentService) applySucceeded(ctx context.Context, intentID string, txn *stripepay.Transaction) (bool, error) {
	var (
		payment   *models.Payment
		confirmed bool
		applied   bool
	)
	now := s.clock.Now()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		payment, err = s.paymentRepo.GetByIntentIDForUpdate(ctx, tx, intentID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrPaymentNotFound
			}
			return err
		}
		if payment.Status == models.PaymentStatusSucceeded || payment.Status == models.PaymentStatusRefunded {
			return nil
		}

		fields := map[string]interface{}{
			"status":          models.PaymentStatusSucceeded,
			"paid_at":         now,
			"failure_message": nil,
		}
		if txn != nil {
			if txn.ChargeID != "" {
				fields["charge_id"] = txn.ChargeID
			}
			if txn.CardLast4 != "" {
				fields["card_last4"] = txn.CardLast4
			}
			if txn.CardBrand != "" {
				fields["card_brand"] = txn.CardBrand
			}
		}

		confirmed, err = s.bookingRepo.TransitionStatus(ctx, tx, payment.BookingID,
			models.BookingStatusPending, models.BookingStatusConfirmed, nil)
		if err != nil {
			return err
		}
		if !confirmed {
			// 预订已被取消后才收到付款，全额退回
			fields["refund_due"] = payment.Amount
		}

		if err := s.paymentRepo.UpdateFields(ctx, tx, payment.ID, fields); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		if errors.IsAppError(err) {
			return false, err
		}
		return false, errors.ErrDatabaseError.WithError(err)
	}

	if !applied {
		metrics.RecordPayment(metrics.PaymentDuplicate)
		return false, nil
	}

	metrics.RecordPayment(metrics.PaymentSucceeded)
	logger.Info("Payment succeeded",
		logger.PaymentIntent(intentID),
		logger.BookingID(payment.BookingID),
		logger.Bool("booking_confirmed", confirmed),
	)

	if !confirmed {
		logger.Warn("Payment received for inactive booking, full refund scheduled",
			logger.BookingID(payment.BookingID),
			logger.PaymentIntent(intentID),
		)
		return true, nil
	}

	metrics.RecordBooking(metrics.BookingConfirmed)
	logger.Info("Booking confirmed", logger.BookingID(payment.BookingID))
	if s.notifier != nil {
		if err := s.notifier.EnqueueBookingConfirmation(ctx, payment.BookingID, payment.ID); err != nil {
			logger.Error("Enqueue booking confirmation failed", logger.BookingID(payment.BookingID), logger.Err(err))
		}
	}
	return true, nil
}

// applyFailed 标记支付失败，已成功的支付不会被迟到的失败事件回退
func (s *PaymentService) applyFailed(ctx context.Context, intentID, message string) error {
	var regressed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.GetByIntentIDForUpdate(ctx, tx, intentID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrPaymentNotFound
			}
			return err
		}
		if payment.Status != models.PaymentStatusPending && payment.Status != models.PaymentStatusFailed {
			return nil
		}
		regressed = true
		return s.paymentRepo.UpdateFields(ctx, tx, payment.ID, map[string]interface{}{
			"status":          models.PaymentStatusFailed,
			"failure_message": utils.StringPtr(truncate(message, 500)),
		})
	})
	if err != nil {
		if errors.IsAppError(err) {
			return err
		}
		return errors.ErrDatabaseError.WithError(err)
	}

	if !regressed {
		logger.Info("Late payment failure ignored", logger.PaymentIntent(intentID))
		return nil
	}
	metrics.RecordPayment(metrics.PaymentFailed)
	logger.Info("Payment failed", logger.PaymentIntent(intentID), logger.String("reason", message))
	return nil
}

// HandleWebhook 处理渠道回调
// 签名无效或内容无法解析时拒绝且不修改任何状态
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ctx, span := tracing.Start(ctx, "payment.webhook")
	defer span.End()

	evt, err := s.provider.ConstructEvent(payload, signature)
	if err != nil {
		tracing.RecordError(span, err)
		if stderrors.Is(err, stripepay.ErrInvalidSignature) {
			metrics.RecordPayment(metrics.PaymentBadSignature)
			logger.Warn("Webhook signature rejected", logger.Err(err))
			return errors.ErrWebhookSignatureInvalid.WithError(err)
		}
		logger.Warn("Webhook payload rejected", logger.Err(err))
		return errors.ErrInvalidParams.WithError(err)
	}
	span.SetAttributes(tracing.AttrPaymentIntent.String(evt.IntentID))

	switch evt.Type {
	case stripepay.EventPaymentSucceeded:
		if evt.IntentID == "" {
			return errors.ErrInvalidParams.WithMessage("回调缺少支付意图")
		}
		// 卡片信息尽力补全，查询失败不影响确认
		var txn *stripepay.Transaction
		if err := s.callProvider(ctx, "retrieve_transaction", func(ctx context.Context) error {
			var err error
			txn, err = s.provider.RetrieveTransaction(ctx, evt.IntentID)
			return err
		}); err != nil {
			logger.Warn("Load transaction details failed", logger.PaymentIntent(evt.IntentID), logger.Err(err))
			txn = nil
		}
		_, err = s.applySucceeded(ctx, evt.IntentID, txn)
	case stripepay.EventPaymentFailed:
		if evt.IntentID == "" {
			return errors.ErrInvalidParams.WithMessage("回调缺少支付意图")
		}
		err = s.applyFailed(ctx, evt.IntentID, evt.FailureMessage)
	default:
		logger.Debug("Webhook event ignored", logger.String("event_type", evt.Type), logger.String("event_id", evt.ID))
		return nil
	}

	if errors.Is(err, errors.ErrPaymentNotFound) {
		// 不属于本系统的支付意图，确认收到即可
		logger.Warn("Webhook for unknown payment intent", logger.PaymentIntent(evt.IntentID), logger.String("event_id", evt.ID))
		return nil
	}
	if err != nil {
		tracing.RecordError(span, err)
	}
	return err
}

// Refund 退还支付记录上的待退金额，成功后支付状态变为 refunded
// 同一支付使用固定的幂等键，重试不会重复退款
func (s *PaymentService) Refund(ctx context.Context, paymentID int64) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !payment.IsSucceeded() || !payment.RefundDue.IsPositive() {
		return payment, nil
	}

	due := payment.RefundDue
	if due.GreaterThan(payment.Amount.Sub(payment.RefundedAmount)) {
		return nil, errors.ErrRefundAmountExceed
	}

	var refund *stripepay.Refund
	err = s.callProvider(ctx, "create_refund", func(ctx context.Context) error {
		refund, err = s.provider.CreateRefund(ctx, &stripepay.RefundRequest{
			IntentID:       payment.IntentID(),
			Amount:         utils.ToMinorUnits(due),
			IdempotencyKey: fmt.Sprintf("payment-%d-refund", payment.ID),
		})
		return err
	})
	if err != nil {
		metrics.RecordRefund("failed")
		return nil, errors.ErrRefundFailed.WithError(err)
	}

	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.paymentRepo.GetForUpdate(ctx, tx, payment.ID)
		if err != nil {
			return err
		}
		if !locked.IsSucceeded() {
			return nil
		}
		return s.paymentRepo.UpdateFields(ctx, tx, payment.ID, map[string]interface{}{
			"status":             models.PaymentStatusRefunded,
			"refunded_amount":    locked.RefundedAmount.Add(due),
			"refund_due":         0,
			"provider_refund_id": refund.ID,
			"refunded_at":        now,
		})
	})
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.RecordRefund("succeeded")
	logger.Info("Payment refunded",
		logger.Int64("payment_id", payment.ID),
		logger.BookingID(payment.BookingID),
		logger.String("amount", due.String()),
		logger.String("refund_id", refund.ID),
	)
	return s.paymentRepo.GetByID(ctx, payment.ID)
}

// RetryPendingRefunds 重试有待退金额的支付，返回成功条数
func (s *PaymentService) RetryPendingRefunds(ctx context.Context, limit int) (int, error) {
	payments, err := s.paymentRepo.ListPendingRefunds(ctx, limit)
	if err != nil {
		return 0, err
	}

	succeeded := 0
	for _, p := range payments {
		if _, err := s.Refund(ctx, p.ID); err != nil {
			logger.Warn("Retry refund failed", logger.Int64("payment_id", p.ID), logger.Err(err))
			continue
		}
		succeeded++
	}
	return succeeded, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package hotel

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dumeirei/hotel-booking-backend/internal/common/clock"
)

// 退款原因
const (
	RefundReasonEligible  = "eligible"
	RefundReasonTooLate   = "too_close_to_check_in"
	RefundReasonNotPaid   = "not_paid"
	RefundReasonZeroValue = "zero_amount"
)

// RefundPolicy 取消退款规则：距入住不少于 ThresholdDays 天按 Rate 比例退款，否则不退
type RefundPolicy struct {
	ThresholdDays int
	Rate          decimal.Decimal
}

// DefaultRefundPolicy 提前 7 天取消退 50%
func DefaultRefundPolicy() RefundPolicy {
	return RefundPolicy{ThresholdDays: 7, Rate: decimal.RequireFromString("0.5")}
}

// RefundDecision 退款决策
type RefundDecision struct {
	Amount           decimal.Decimal
	DaysUntilCheckIn int
	Reason           string
}

// Decide 仅依赖支付金额与距入住天数，结果不超过支付金额
func (p RefundPolicy) Decide(paymentAmount decimal.Decimal, daysUntilCheckIn int) RefundDecision {
	d := RefundDecision{Amount: decimal.Zero, DaysUntilCheckIn: daysUntilCheckIn, Reason: RefundReasonTooLate}
	if daysUntilCheckIn < p.ThresholdDays {
		return d
	}

	amount := paymentAmount.Mul(p.Rate)
	if amount.GreaterThan(paymentAmount) {
		amount = paymentAmount
	}
	if !amount.IsPositive() {
		d.Reason = RefundReasonZeroValue
		return d
	}
	d.Amount = amount
	d.Reason = RefundReasonEligible
	return d
}

// DecideAt 以 now 所在的日历日计算距入住天数
func (p RefundPolicy) DecideAt(paymentAmount decimal.Decimal, checkIn, now time.Time) RefundDecision {
	return p.Decide(paymentAmount, clock.DaysBetween(now, checkIn))
}

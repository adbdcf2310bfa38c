package payment

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/internal/service/hotel"
)

// 预订 -> 支付 -> 确认 -> 提前取消退款 全流程
func TestBookingPaymentScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	bookings := hotel.NewBookingService(
		f.db,
		f.bookingRepo,
		repository.NewRoomRepository(f.db),
		repository.NewHotelRepository(f.db),
		f.paymentRepo,
		nil,
		f.svc,
		f.clock,
		hotel.DefaultRates(),
		hotel.DefaultRefundPolicy(),
	)

	b, err := bookings.Create(ctx, f.actor(), &hotel.CreateBookingRequest{
		RoomID: f.room.ID, HotelID: f.hotel.ID,
		CheckInDate: "2025-06-01", CheckOutDate: "2025-06-04",
		GuestName: "张三", GuestEmail: "guest@example.com", GuestPhone: "13800000000",
		GuestsCount: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "450.00", utils.FormatMoney(b.Subtotal))
	assert.Equal(t, "12.60", utils.FormatMoney(b.ServiceFee))
	assert.Equal(t, "7.38", utils.FormatMoney(b.Taxes))
	assert.Equal(t, "469.98", utils.FormatMoney(b.TotalAmount))

	intent, err := f.svc.CreateIntent(ctx, f.actor(), &CreateIntentRequest{BookingID: b.ID})
	require.NoError(t, err)
	f.provider.pay(intent.PaymentIntentID)

	confirmed, err := f.svc.Confirm(ctx, f.actor(), &ConfirmRequest{PaymentIntentID: intent.PaymentIntentID})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Booking.Status)
	assert.Equal(t, models.PaymentStatusSucceeded, confirmed.Payment.Status)

	// 入住前 10 天取消
	f.clock.Set(time.Date(2025, 5, 22, 8, 0, 0, 0, time.UTC))
	res, err := bookings.Cancel(ctx, f.actor(), b.ID, &hotel.CancelBookingRequest{})
	require.NoError(t, err)
	assert.Empty(t, res.Warning)
	assert.Equal(t, models.BookingStatusCancelled, res.Booking.Status)
	require.NotNil(t, res.Refund)
	assert.Equal(t, "234.99", res.Refund.Amount)
	assert.Equal(t, 10, res.Refund.DaysUntilCheckIn)

	p, err := f.paymentRepo.GetByIntentID(ctx, intent.PaymentIntentID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRefunded, p.Status)
	assert.True(t, p.RefundedAmount.Equal(decimal.RequireFromString("234.99")))
	assert.Equal(t, int64(23499), f.provider.lastRefund.Amount)

	// 房间日期重新可订
	avail, err := bookings.CheckAvailability(ctx, &hotel.CheckAvailabilityRequest{
		RoomID: f.room.ID, CheckInDate: "2025-06-01", CheckOutDate: "2025-06-04",
	})
	require.NoError(t, err)
	assert.True(t, avail.Available)
}

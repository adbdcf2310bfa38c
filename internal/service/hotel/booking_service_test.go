package hotel

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	"github.com/dumeirei/hotel-booking-backend/internal/common/clock"
	appErrors "github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/qrcode"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func day(s string) time.Time {
	t, _ := clock.ParseDate(s)
	return t
}

type fixture struct {
	db     *gorm.DB
	clock  *clock.FixedClock
	owner  *models.User
	guest  *models.User
	other  *models.User
	admin  *models.User
	hotel  *models.Hotel
	room   *models.Room
	refund *fakeRefunder
	svc    *BookingService

	bookingRepo *repository.BookingRepository
	paymentRepo *repository.PaymentRepository
}

func (f *fixture) guestActor() models.Actor {
	return models.Actor{UserID: f.guest.ID, Role: models.RoleUser}
}

func (f *fixture) ownerActor() models.Actor {
	return models.Actor{UserID: f.owner.ID, Role: models.RoleHotelOwner}
}

func (f *fixture) adminActor() models.Actor {
	return models.Actor{UserID: f.admin.ID, Role: models.RoleAdmin}
}

// fakeRefunder 模拟退款渠道，成功时把待退金额记为已退
type fakeRefunder struct {
	mu    sync.Mutex
	calls []int64
	err   error
	repo  *repository.PaymentRepository
}

func (r *fakeRefunder) Refund(ctx context.Context, paymentID int64) (*models.Payment, error) {
	r.mu.Lock()
	r.calls = append(r.calls, paymentID)
	err := r.err
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	p, err := r.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	err = r.repo.UpdateFields(ctx, nil, paymentID, map[string]interface{}{
		"status":          models.PaymentStatusRefunded,
		"refunded_amount": p.RefundDue,
		"refund_due":      decimal.Zero,
	})
	if err != nil {
		return nil, err
	}
	return r.repo.GetByID(ctx, paymentID)
}

func (r *fakeRefunder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newFixture(t *testing.T, locker RoomLocker) *fixture {
	db := setupTestDB(t)
	f := &fixture{
		db:    db,
		clock: clock.Fixed(time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)),
		owner: &models.User{Name: "业主", Email: "owner@example.com", Role: models.RoleHotelOwner},
		guest: &models.User{Name: "住客", Email: "guest@example.com", Role: models.RoleUser},
		other: &models.User{Name: "路人", Email: "other@example.com", Role: models.RoleUser},
		admin: &models.User{Name: "管理员", Email: "admin@example.com", Role: models.RoleAdmin},
	}
	for _, u := range []*models.User{f.owner, f.guest, f.other, f.admin} {
		require.NoError(t, db.Create(u).Error)
	}

	f.hotel = &models.Hotel{OwnerID: f.owner.ID, Name: "海景酒店", City: "厦门", Address: "环岛路1号", IsActive: true}
	require.NoError(t, db.Create(f.hotel).Error)
	f.room = &models.Room{
		HotelID: f.hotel.ID, Name: "201", Type: models.RoomTypeDouble,
		PricePerNight: decimal.NewFromInt(150), MaxGuests: 2, IsAvailable: true, IsActive: true,
	}
	require.NoError(t, db.Create(f.room).Error)

	f.bookingRepo = repository.NewBookingRepository(db)
	f.paymentRepo = repository.NewPaymentRepository(db)
	f.refund = &fakeRefunder{repo: f.paymentRepo}
	f.svc = NewBookingService(
		db,
		f.bookingRepo,
		repository.NewRoomRepository(db),
		repository.NewHotelRepository(db),
		f.paymentRepo,
		locker,
		f.refund,
		f.clock,
		DefaultRates(),
		DefaultRefundPolicy(),
	)
	return f
}

func (f *fixture) createReq(in, out string) *CreateBookingRequest {
	return &CreateBookingRequest{
		RoomID: f.room.ID, HotelID: f.hotel.ID,
		CheckInDate: in, CheckOutDate: out,
		GuestName: "张三", GuestEmail: "guest@example.com", GuestPhone: "13800000000",
		GuestsCount: 2,
	}
}

// insertBooking 直接写入指定状态的预订
func (f *fixture) insertBooking(t *testing.T, in, out, status string) *models.Booking {
	q := DefaultRates().Quote(f.room.PricePerNight, clock.DaysBetween(day(in), day(out)))
	b := &models.Booking{
		BookingNo: utils.GenerateOrderNo("BK", f.clock.Now()), UserID: f.guest.ID,
		RoomID: f.room.ID, HotelID: f.hotel.ID,
		CheckInDate: day(in), CheckOutDate: day(out), TotalNights: q.Nights,
		GuestName: "张三", GuestEmail: "guest@example.com", GuestPhone: "13800000000",
		GuestsCount: 1, RoomsCount: 1,
		PricePerNight: q.PricePerNight, Subtotal: q.Subtotal, ServiceFee: q.ServiceFee,
		Taxes: q.Taxes, TotalAmount: q.Total, Status: status,
	}
	require.NoError(t, f.db.Create(b).Error)
	return b
}

func (f *fixture) insertPayment(t *testing.T, b *models.Booking, status string) *models.Payment {
	p := &models.Payment{
		BookingID: b.ID, UserID: b.UserID,
		PaymentIntentID: utils.StringPtr("pi_" + b.BookingNo),
		Amount:          b.TotalAmount, Currency: "usd", PaymentMethod: models.PaymentMethodCard,
		Status: status,
	}
	if status == models.PaymentStatusSucceeded {
		p.PaidAt = utils.TimePtr(f.clock.Now())
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func TestBookingService_CheckAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	t.Run("空闲房间返回报价", func(t *testing.T) {
		res, err := f.svc.CheckAvailability(ctx, &CheckAvailabilityRequest{
			RoomID: f.room.ID, CheckInDate: "2025-06-01", CheckOutDate: "2025-06-04",
		})
		require.NoError(t, err)
		assert.True(t, res.Available)
		assert.Equal(t, 3, res.Nights)
		require.NotNil(t, res.Pricing)
		assert.Equal(t, "450.00", res.Pricing.Subtotal)
		assert.Equal(t, "12.60", res.Pricing.ServiceFee)
		assert.Equal(t, "7.38", res.Pricing.Taxes)
		assert.Equal(t, "469.98", res.Pricing.Total)
	})

	t.Run("日期冲突返回冲突区间", func(t *testing.T) {
		f.insertBooking(t, "2025-06-10", "2025-06-12", models.BookingStatusConfirmed)
		f.insertBooking(t, "2025-06-13", "2025-06-15", models.BookingStatusCancelled)

		res, err := f.svc.CheckAvailability(ctx, &CheckAvailabilityRequest{
			RoomID: f.room.ID, CheckInDate: "2025-06-11", CheckOutDate: "2025-06-14",
		})
		require.NoError(t, err)
		assert.False(t, res.Available)
		assert.Nil(t, res.Pricing)
		assert.Equal(t, []DateRange{{CheckIn: "2025-06-10", CheckOut: "2025-06-12"}}, res.ConflictingDates)
	})

	t.Run("退房当天可以入住", func(t *testing.T) {
		res, err := f.svc.CheckAvailability(ctx, &CheckAvailabilityRequest{
			RoomID: f.room.ID, CheckInDate: "2025-06-12", CheckOutDate: "2025-06-13",
		})
		require.NoError(t, err)
		assert.True(t, res.Available)
	})

	t.Run("超出人数", func(t *testing.T) {
		guests := 3
		_, err := f.svc.CheckAvailability(ctx, &CheckAvailabilityRequest{
			RoomID: f.room.ID, CheckInDate: "2025-06-01", CheckOutDate: "2025-06-02", GuestsCount: &guests,
		})
		assert.ErrorIs(t, err, appErrors.ErrGuestCapacityExceeded)
	})

	t.Run("日期校验", func(t *testing.T) {
		cases := [][2]string{
			{"2025-05-19", "2025-05-21"},
			{"2025-06-04", "2025-06-04"},
			{"2025-06-04", "2025-06-01"},
			{"06/01/2025", "2025-06-04"},
		}
		for _, c := range cases {
			_, err := f.svc.CheckAvailability(ctx, &CheckAvailabilityRequest{RoomID: f.room.ID, CheckInDate: c[0], CheckOutDate: c[1]})
			assert.ErrorIs(t, err, appErrors.ErrInvalidParams, c)
		}
	})

	t.Run("房间不存在", func(t *testing.T) {
		_, err := f.svc.CheckAvailability(ctx, &CheckAvailabilityRequest{RoomID: 999, CheckInDate: "2025-06-01", CheckOutDate: "2025-06-02"})
		assert.ErrorIs(t, err, appErrors.ErrRoomNotFound)
	})

	t.Run("房间关闭预订", func(t *testing.T) {
		require.NoError(t, f.db.Model(&models.Room{}).Where("id = ?", f.room.ID).Update("is_available", false).Error)
		t.Cleanup(func() {
			f.db.Model(&models.Room{}).Where("id = ?", f.room.ID).Update("is_available", true)
		})

		res, err := f.svc.CheckAvailability(ctx, &CheckAvailabilityRequest{RoomID: f.room.ID, CheckInDate: "2025-07-01", CheckOutDate: "2025-07-02"})
		require.NoError(t, err)
		assert.False(t, res.Available)
		assert.NotEmpty(t, res.Message)
	})
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("创建待支付预订并快照价格", func(t *testing.T) {
		f := newFixture(t, nil)
		req := f.createReq("2025-06-01", "2025-06-04")
		req.GuestsDetails = []GuestDetail{{Name: "李四"}}

		b, err := f.svc.Create(ctx, f.guestActor(), req)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusPending, b.Status)
		assert.True(t, strings.HasPrefix(b.BookingNo, "BK"))
		assert.Equal(t, 3, b.TotalNights)
		assert.Equal(t, 1, b.RoomsCount)
		assert.Equal(t, f.guest.ID, b.UserID)
		assert.Equal(t, "469.98", utils.FormatMoney(b.TotalAmount))
		assert.JSONEq(t, `[{"name":"李四"}]`, string(b.GuestsDetails))

		// 改价不影响已有预订
		require.NoError(t, f.db.Model(&models.Room{}).Where("id = ?", f.room.ID).Update("price_per_night", decimal.NewFromInt(99)).Error)
		saved, err := f.bookingRepo.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, saved.PricePerNight.Equal(decimal.NewFromInt(150)))
		assert.True(t, saved.TotalAmount.Equal(decimal.RequireFromString("469.98")))
	})

	t.Run("日期冲突", func(t *testing.T) {
		f := newFixture(t, nil)
		f.insertBooking(t, "2025-06-02", "2025-06-05", models.BookingStatusPending)

		_, err := f.svc.Create(ctx, f.guestActor(), f.createReq("2025-06-01", "2025-06-03"))
		require.ErrorIs(t, err, appErrors.ErrRoomUnavailable)

		appErr := appErrors.GetAppError(err)
		data, ok := appErr.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, []DateRange{{CheckIn: "2025-06-02", CheckOut: "2025-06-05"}}, data["conflicting_dates"])
	})

	t.Run("已取消预订不占用日期", func(t *testing.T) {
		f := newFixture(t, nil)
		f.insertBooking(t, "2025-06-01", "2025-06-04", models.BookingStatusCancelled)

		_, err := f.svc.Create(ctx, f.guestActor(), f.createReq("2025-06-01", "2025-06-04"))
		assert.NoError(t, err)
	})

	t.Run("超出房间容量", func(t *testing.T) {
		f := newFixture(t, nil)
		req := f.createReq("2025-06-01", "2025-06-04")
		req.GuestsCount = 3
		_, err := f.svc.Create(ctx, f.guestActor(), req)
		assert.ErrorIs(t, err, appErrors.ErrGuestCapacityExceeded)
	})

	t.Run("酒店与房间不匹配", func(t *testing.T) {
		f := newFixture(t, nil)
		req := f.createReq("2025-06-01", "2025-06-04")
		req.HotelID = f.hotel.ID + 100
		_, err := f.svc.Create(ctx, f.guestActor(), req)
		assert.ErrorIs(t, err, appErrors.ErrInvalidParams)
	})

	t.Run("房间停用", func(t *testing.T) {
		f := newFixture(t, nil)
		require.NoError(t, f.db.Model(&models.Room{}).Where("id = ?", f.room.ID).Update("is_active", false).Error)
		_, err := f.svc.Create(ctx, f.guestActor(), f.createReq("2025-06-01", "2025-06-04"))
		assert.ErrorIs(t, err, appErrors.ErrRoomUnavailable)
	})

	t.Run("房间锁被占用", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		locker := cache.NewRoomLocker(client, 10*time.Second)
		f := newFixture(t, locker)

		unlock, err := locker.Lock(ctx, f.room.ID)
		require.NoError(t, err)
		defer unlock()

		_, err = f.svc.Create(ctx, f.guestActor(), f.createReq("2025-06-01", "2025-06-04"))
		require.ErrorIs(t, err, appErrors.ErrRoomUnavailable)
		assert.Contains(t, err.Error(), "稍后重试")
	})

	t.Run("redis不可用时依赖数据库锁", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
		f := newFixture(t, cache.NewRoomLocker(client, time.Second))
		mr.Close()

		_, err := f.svc.Create(ctx, f.guestActor(), f.createReq("2025-06-01", "2025-06-04"))
		assert.NoError(t, err)
	})
}

func TestBookingService_CreateConcurrent(t *testing.T) {
	run := func(t *testing.T, locker RoomLocker) {
		f := newFixture(t, locker)
		const workers = 5

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
			errs      []error
		)
		start := make(chan struct{})
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				// 日期两两重叠
				in := day("2025-06-01").AddDate(0, 0, i%2)
				req := f.createReq(in.Format("2006-01-02"), in.AddDate(0, 0, 3).Format("2006-01-02"))
				_, err := f.svc.Create(context.Background(), f.guestActor(), req)

				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					succeeded++
				} else {
					errs = append(errs, err)
				}
			}(i)
		}
		close(start)
		wg.Wait()

		assert.Equal(t, 1, succeeded)
		for _, err := range errs {
			assert.ErrorIs(t, err, appErrors.ErrRoomUnavailable)
		}

		var count int64
		require.NoError(t, f.db.Model(&models.Booking{}).Where("room_id = ?", f.room.ID).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	}

	t.Run("仅数据库行锁", func(t *testing.T) {
		run(t, nil)
	})

	t.Run("redis房间锁", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		run(t, cache.NewRoomLocker(client, 10*time.Second))
	})
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("状态限制", func(t *testing.T) {
		f := newFixture(t, nil)
		completed := f.insertBooking(t, "2025-06-01", "2025-06-03", models.BookingStatusCompleted)
		cancelled := f.insertBooking(t, "2025-06-05", "2025-06-07", models.BookingStatusCancelled)
		today := f.insertBooking(t, "2025-05-20", "2025-05-22", models.BookingStatusConfirmed)

		for _, b := range []*models.Booking{completed, cancelled, today} {
			_, err := f.svc.Cancel(ctx, f.guestActor(), b.ID, &CancelBookingRequest{})
			assert.ErrorIs(t, err, appErrors.ErrBookingNotCancellable, b.Status)
		}
	})

	t.Run("明天入住的已确认预订可以取消", func(t *testing.T) {
		f := newFixture(t, nil)
		b := f.insertBooking(t, "2025-05-21", "2025-05-23", models.BookingStatusConfirmed)

		res, err := f.svc.Cancel(ctx, f.guestActor(), b.ID, &CancelBookingRequest{Reason: utils.StringPtr("行程变更")})
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, res.Booking.Status)
		assert.Equal(t, "行程变更", utils.SafeString(res.Booking.CancelReason))
		require.NotNil(t, res.Booking.CancelledBy)
		assert.Equal(t, f.guest.ID, *res.Booking.CancelledBy)
		assert.Nil(t, res.Refund)
		assert.Empty(t, res.Warning)

		// 不能重复取消
		_, err = f.svc.Cancel(ctx, f.guestActor(), b.ID, &CancelBookingRequest{})
		assert.ErrorIs(t, err, appErrors.ErrBookingNotCancellable)
	})

	t.Run("提前10天取消退一半", func(t *testing.T) {
		f := newFixture(t, nil)
		b := f.insertBooking(t, "2025-06-01", "2025-06-04", models.BookingStatusConfirmed)
		p := f.insertPayment(t, b, models.PaymentStatusSucceeded)
		f.clock.Set(time.Date(2025, 5, 22, 9, 0, 0, 0, time.UTC))

		res, err := f.svc.Cancel(ctx, f.guestActor(), b.ID, &CancelBookingRequest{})
		require.NoError(t, err)
		require.NotNil(t, res.Refund)
		assert.Equal(t, "234.99", res.Refund.Amount)
		assert.Equal(t, 10, res.Refund.DaysUntilCheckIn)
		assert.Equal(t, RefundStatusProcessed, res.Refund.Status)
		assert.Equal(t, 1, f.refund.callCount())

		saved, err := f.paymentRepo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusRefunded, saved.Status)
		assert.True(t, saved.RefundedAmount.Equal(decimal.RequireFromString("234.99")))
	})

	t.Run("6天内取消不退款", func(t *testing.T) {
		f := newFixture(t, nil)
		b := f.insertBooking(t, "2025-05-26", "2025-05-28", models.BookingStatusConfirmed)
		p := f.insertPayment(t, b, models.PaymentStatusSucceeded)

		res, err := f.svc.Cancel(ctx, f.guestActor(), b.ID, &CancelBookingRequest{})
		require.NoError(t, err)
		require.NotNil(t, res.Refund)
		assert.Equal(t, "0.00", res.Refund.Amount)
		assert.Equal(t, RefundStatusNone, res.Refund.Status)
		assert.Equal(t, 0, f.refund.callCount())

		saved, err := f.paymentRepo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusSucceeded, saved.Status)
	})

	t.Run("未支付预订取消不退款", func(t *testing.T) {
		f := newFixture(t, nil)
		b := f.insertBooking(t, "2025-07-01", "2025-07-02", models.BookingStatusPending)
		f.insertPayment(t, b, models.PaymentStatusPending)

		res, err := f.svc.Cancel(ctx, f.guestActor(), b.ID, &CancelBookingRequest{})
		require.NoError(t, err)
		assert.Nil(t, res.Refund)
		assert.Equal(t, 0, f.refund.callCount())
	})

	t.Run("退款失败不回滚取消", func(t *testing.T) {
		f := newFixture(t, nil)
		f.refund.err = appErrors.ErrProviderCallFailed
		b := f.insertBooking(t, "2025-07-01", "2025-07-03", models.BookingStatusConfirmed)
		p := f.insertPayment(t, b, models.PaymentStatusSucceeded)

		res, err := f.svc.Cancel(ctx, f.guestActor(), b.ID, &CancelBookingRequest{})
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, res.Booking.Status)
		assert.Equal(t, appErrors.ErrRefundFailed.Message, res.Warning)
		assert.Equal(t, RefundStatusPending, res.Refund.Status)

		saved, err := f.paymentRepo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusSucceeded, saved.Status)
		assert.True(t, saved.RefundDue.Equal(p.Amount.Mul(decimal.RequireFromString("0.5"))))

		pending, err := f.paymentRepo.ListPendingRefunds(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, p.ID, pending[0].ID)
	})

	t.Run("权限", func(t *testing.T) {
		f := newFixture(t, nil)
		b1 := f.insertBooking(t, "2025-07-01", "2025-07-02", models.BookingStatusPending)
		b2 := f.insertBooking(t, "2025-07-03", "2025-07-04", models.BookingStatusPending)

		_, err := f.svc.Cancel(ctx, models.Actor{UserID: f.other.ID, Role: models.RoleUser}, b1.ID, &CancelBookingRequest{})
		assert.ErrorIs(t, err, appErrors.ErrPermissionDenied)

		// 其他业主
		_, err = f.svc.Cancel(ctx, models.Actor{UserID: f.other.ID, Role: models.RoleHotelOwner}, b1.ID, &CancelBookingRequest{})
		assert.ErrorIs(t, err, appErrors.ErrPermissionDenied)

		_, err = f.svc.Cancel(ctx, f.ownerActor(), b1.ID, &CancelBookingRequest{})
		assert.NoError(t, err)

		_, err = f.svc.Cancel(ctx, f.adminActor(), b2.ID, &CancelBookingRequest{})
		assert.NoError(t, err)

		_, err = f.svc.Cancel(ctx, f.adminActor(), 999, &CancelBookingRequest{})
		assert.ErrorIs(t, err, appErrors.ErrBookingNotFound)
	})
}

func TestBookingService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.insertBooking(t, "2025-06-01", "2025-06-03", models.BookingStatusConfirmed)
	f.insertBooking(t, "2025-05-10", "2025-05-12", models.BookingStatusCompleted)
	f.insertBooking(t, "2025-06-10", "2025-06-12", models.BookingStatusCancelled)
	otherBooking := f.insertBooking(t, "2025-07-01", "2025-07-02", models.BookingStatusCompleted)
	require.NoError(t, f.db.Model(otherBooking).Update("user_id", f.other.ID).Error)

	t.Run("只返回自己的预订", func(t *testing.T) {
		list, total, err := f.svc.List(ctx, f.guestActor(), &ListBookingsRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Equal(t, "2025-06-10", list[0].CheckInDate.Format("2006-01-02"))
		assert.NotNil(t, list[0].Hotel)
		assert.NotNil(t, list[0].Room)
	})

	t.Run("upcoming", func(t *testing.T) {
		list, total, err := f.svc.List(ctx, f.guestActor(), &ListBookingsRequest{Scope: repository.ScopeUpcoming})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, models.BookingStatusConfirmed, list[0].Status)
	})

	t.Run("past不泄露他人已完成预订", func(t *testing.T) {
		list, total, err := f.svc.List(ctx, f.guestActor(), &ListBookingsRequest{Scope: repository.ScopePast})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, f.guest.ID, list[0].UserID)
	})

	t.Run("业主查看自己酒店", func(t *testing.T) {
		_, total, err := f.svc.List(ctx, f.ownerActor(), &ListBookingsRequest{HotelID: f.hotel.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)

		_, _, err = f.svc.List(ctx, models.Actor{UserID: f.other.ID, Role: models.RoleHotelOwner}, &ListBookingsRequest{HotelID: f.hotel.ID})
		assert.ErrorIs(t, err, appErrors.ErrPermissionDenied)
	})

	t.Run("分页", func(t *testing.T) {
		list, total, err := f.svc.List(ctx, f.guestActor(), &ListBookingsRequest{Page: 2, PerPage: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, list, 1)
	})
}

func TestBookingService_GetAndReceipt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	b := f.insertBooking(t, "2025-06-01", "2025-06-04", models.BookingStatusConfirmed)
	f.insertPayment(t, b, models.PaymentStatusSucceeded)

	got, err := f.svc.Get(ctx, f.ownerActor(), b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Payment)

	_, err = f.svc.Get(ctx, models.Actor{UserID: f.other.ID, Role: models.RoleUser}, b.ID)
	assert.ErrorIs(t, err, appErrors.ErrPermissionDenied)

	receipt, err := f.svc.Receipt(ctx, f.guestActor(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.BookingNo, receipt.BookingNo)
	assert.Equal(t, "海景酒店", receipt.HotelName)
	assert.Equal(t, "201", receipt.RoomName)
	assert.Equal(t, "469.98", receipt.Pricing.Total)
	assert.Equal(t, "2025-06-01", receipt.CheckInDate)
	require.NotNil(t, receipt.Payment)
	assert.Equal(t, "469.98", receipt.Payment.Amount)
	assert.Equal(t, "234.99", receipt.Payment.RefundIfCancelled)
	assert.True(t, strings.HasPrefix(receipt.QRCode, "data:image/png;base64,"))
}

func TestBookingService_VerifyReceipt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	confirmed := f.insertBooking(t, "2025-06-01", "2025-06-04", models.BookingStatusConfirmed)
	pending := f.insertBooking(t, "2025-06-10", "2025-06-12", models.BookingStatusPending)

	t.Run("业主核验已确认预订", func(t *testing.T) {
		got, err := f.svc.VerifyReceipt(ctx, f.ownerActor(), qrcode.ReceiptContent(confirmed.BookingNo, confirmed.CheckInDate))
		require.NoError(t, err)
		assert.Equal(t, confirmed.ID, got.ID)
	})

	t.Run("住客无权核验", func(t *testing.T) {
		_, err := f.svc.VerifyReceipt(ctx, f.guestActor(), qrcode.ReceiptContent(confirmed.BookingNo, confirmed.CheckInDate))
		assert.ErrorIs(t, err, appErrors.ErrPermissionDenied)
	})

	t.Run("其他业主无权核验", func(t *testing.T) {
		stranger := models.Actor{UserID: f.other.ID, Role: models.RoleHotelOwner}
		_, err := f.svc.VerifyReceipt(ctx, stranger, qrcode.ReceiptContent(confirmed.BookingNo, confirmed.CheckInDate))
		assert.ErrorIs(t, err, appErrors.ErrPermissionDenied)
	})

	t.Run("日期不一致", func(t *testing.T) {
		_, err := f.svc.VerifyReceipt(ctx, f.adminActor(), qrcode.ReceiptContent(confirmed.BookingNo, day("2025-06-02")))
		assert.ErrorIs(t, err, appErrors.ErrInvalidParams)
	})

	t.Run("未确认的预订", func(t *testing.T) {
		_, err := f.svc.VerifyReceipt(ctx, f.adminActor(), qrcode.ReceiptContent(pending.BookingNo, pending.CheckInDate))
		assert.ErrorIs(t, err, appErrors.ErrBookingStatusError)
	})

	t.Run("预订不存在或内容非法", func(t *testing.T) {
		_, err := f.svc.VerifyReceipt(ctx, f.adminActor(), qrcode.ReceiptContent("BK404", confirmed.CheckInDate))
		assert.ErrorIs(t, err, appErrors.ErrBookingNotFound)

		_, err = f.svc.VerifyReceipt(ctx, f.adminActor(), "not-a-receipt")
		assert.ErrorIs(t, err, appErrors.ErrInvalidParams)
	})
}

func TestBookingService_CompleteFinished(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	done := f.insertBooking(t, "2025-05-15", "2025-05-20", models.BookingStatusConfirmed)
	staying := f.insertBooking(t, "2025-05-19", "2025-05-21", models.BookingStatusConfirmed)
	unpaid := f.insertBooking(t, "2025-05-10", "2025-05-12", models.BookingStatusPending)

	n, err := f.svc.CompleteFinished(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for id, want := range map[int64]string{
		done.ID:    models.BookingStatusCompleted,
		staying.ID: models.BookingStatusConfirmed,
		unpaid.ID:  models.BookingStatusPending,
	} {
		b, err := f.bookingRepo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, b.Status)
	}

	n, err = f.svc.CompleteFinished(ctx, 100)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBookingService_ComputeRefund(t *testing.T) {
	f := newFixture(t, nil)
	b := &models.Booking{CheckInDate: day("2025-06-01")}

	d := f.svc.ComputeRefund(b, nil)
	assert.Equal(t, RefundReasonNotPaid, d.Reason)

	d = f.svc.ComputeRefund(b, &models.Payment{Status: models.PaymentStatusSucceeded, Amount: decimal.NewFromInt(300)})
	assert.Equal(t, 12, d.DaysUntilCheckIn)
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(150)))
}

// Package app 组装业务服务，供 API 与 worker 进程共用
package app

import (
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/clock"
	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/internal/service/hotel"
	"github.com/dumeirei/hotel-booking-backend/internal/service/payment"
	"github.com/dumeirei/hotel-booking-backend/pkg/stripepay"
)

// Notifier 同时负责预订确认与降价提醒
type Notifier interface {
	payment.ConfirmationNotifier
	hotel.PriceDropNotifier
}

// Services 业务服务集合
type Services struct {
	Booking  *hotel.BookingService
	Favorite *hotel.FavoriteService
	Room     *hotel.RoomService
	Payment  *payment.PaymentService
}

// Options 可替换的外部依赖，未设置时使用默认实现
type Options struct {
	Locker   hotel.RoomLocker
	Notifier Notifier
	Provider stripepay.Provider
	Clock    clock.Clock
}

// NewServices 按配置创建业务服务
func NewServices(cfg *config.Config, db *gorm.DB, opts Options) (*Services, error) {
	bc := &cfg.Business.Booking
	serviceFee, tax, refundRate, err := bc.Rates()
	if err != nil {
		return nil, err
	}

	if opts.Provider == nil {
		opts.Provider = stripepay.NewClient(&stripepay.Config{
			SecretKey:     cfg.Stripe.SecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
			Timeout:       cfg.Stripe.Timeout(),
		})
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}

	// 初始化仓储
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	hotelRepo := repository.NewHotelRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	var (
		confirmations payment.ConfirmationNotifier
		priceDrops    hotel.PriceDropNotifier
	)
	if opts.Notifier != nil {
		confirmations, priceDrops = opts.Notifier, opts.Notifier
	}

	paymentSvc := payment.NewPaymentService(db, bookingRepo, paymentRepo, opts.Provider, confirmations, opts.Clock, payment.Options{
		Currency:        cfg.Stripe.Currency,
		ProviderTimeout: cfg.Stripe.Timeout(),
	})

	bookingSvc := hotel.NewBookingService(
		db, bookingRepo, roomRepo, hotelRepo, paymentRepo,
		opts.Locker, paymentSvc, opts.Clock,
		hotel.Rates{ServiceFee: serviceFee, Tax: tax},
		hotel.RefundPolicy{ThresholdDays: bc.RefundThresholdDays, Rate: refundRate},
	)

	favoriteSvc := hotel.NewFavoriteService(favoriteRepo, hotelRepo, roomRepo)
	roomSvc := hotel.NewRoomService(db, roomRepo, hotelRepo, favoriteSvc, priceDrops)

	return &Services{
		Booking:  bookingSvc,
		Favorite: favoriteSvc,
		Room:     roomSvc,
		Payment:  paymentSvc,
	}, nil
}

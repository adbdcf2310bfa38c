package hotel

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	"github.com/dumeirei/hotel-booking-backend/internal/common/clock"
	"github.com/dumeirei/hotel-booking-backend/internal/common/database"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-backend/internal/common/qrcode"
	"github.com/dumeirei/hotel-booking-backend/internal/common/tracing"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
)

// RoomLocker 房间级互斥锁
type RoomLocker interface {
	Lock(ctx context.Context, roomID int64) (func(), error)
}

// Refunder 对支付记录上待退金额发起退款
type Refunder interface {
	Refund(ctx context.Context, paymentID int64) (*models.Payment, error)
}

// BookingService 预订服务
type BookingService struct {
	db           *gorm.DB
	bookingRepo  *repository.BookingRepository
	roomRepo     *repository.RoomRepository
	hotelRepo    *repository.HotelRepository
	paymentRepo  *repository.PaymentRepository
	availability *AvailabilityEngine
	locker       RoomLocker
	refunder     Refunder
	clock        clock.Clock
	rates        Rates
	policy       RefundPolicy
	qr           *qrcode.Encoder
}

// NewBookingService 创建预订服务，locker 与 refunder 可以为空
func NewBookingService(
	db *gorm.DB,
	bookingRepo *repository.BookingRepository,
	roomRepo *repository.RoomRepository,
	hotelRepo *repository.HotelRepository,
	paymentRepo *repository.PaymentRepository,
	locker RoomLocker,
	refunder Refunder,
	clk clock.Clock,
	rates Rates,
	policy RefundPolicy,
) *BookingService {
	if clk == nil {
		clk = clock.Real()
	}
	return &BookingService{
		db:           db,
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		hotelRepo:    hotelRepo,
		paymentRepo:  paymentRepo,
		availability: NewAvailabilityEngine(bookingRepo),
		locker:       locker,
		refunder:     refunder,
		clock:        clk,
		rates:        rates,
		policy:       policy,
		qr:           qrcode.NewEncoder(qrcode.DefaultSize),
	}
}

// stay 已校验的入住区间
type stay struct {
	checkIn  time.Time
	checkOut time.Time
	nights   int
}

// parseStay 解析并校验入住、退房日期
func (s *BookingService) parseStay(checkInStr, checkOutStr string) (stay, error) {
	checkIn, err := clock.ParseDate(checkInStr)
	if err != nil {
		return stay{}, errors.ErrInvalidParams.WithMessage("入住日期格式应为 YYYY-MM-DD")
	}
	checkOut, err := clock.ParseDate(checkOutStr)
	if err != nil {
		return stay{}, errors.ErrInvalidParams.WithMessage("退房日期格式应为 YYYY-MM-DD")
	}
	if checkIn.Before(clock.Today(s.clock)) {
		return stay{}, errors.ErrInvalidParams.WithMessage("入住日期不能早于今天")
	}
	if !checkOut.After(checkIn) {
		return stay{}, errors.ErrInvalidParams.WithMessage("退房日期必须晚于入住日期")
	}
	return stay{checkIn: checkIn, checkOut: checkOut, nights: clock.DaysBetween(checkIn, checkOut)}, nil
}

func (s *BookingService) getRoom(ctx context.Context, roomID int64) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

// CheckAvailabilityRequest 可用性查询请求
type CheckAvailabilityRequest struct {
	RoomID       int64  `json:"room_id" binding:"required,min=1"`
	CheckInDate  string `json:"check_in_date" binding:"required"`
	CheckOutDate string `json:"check_out_date" binding:"required"`
	GuestsCount  *int   `json:"guests_count" binding:"omitempty,min=1"`
}

// AvailabilityResult 可用性查询结果
type AvailabilityResult struct {
	Available        bool         `json:"available"`
	Message          string       `json:"message,omitempty"`
	ConflictingDates []DateRange  `json:"conflicting_dates,omitempty"`
	Nights           int          `json:"nights,omitempty"`
	Pricing          *PricingView `json:"pricing,omitempty"`
}

// CheckAvailability 查询房间可用性并报价，结果仅供参考，创建预订时会重新校验
func (s *BookingService) CheckAvailability(ctx context.Context, req *CheckAvailabilityRequest) (*AvailabilityResult, error) {
	st, err := s.parseStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	room, err := s.getRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if req.GuestsCount != nil && *req.GuestsCount > room.MaxGuests {
		return nil, errors.ErrGuestCapacityExceeded
	}

	avail, err := s.availability.Check(ctx, nil, room, st.checkIn, st.checkOut)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if !avail.Available {
		result := &AvailabilityResult{Available: false, ConflictingDates: avail.Conflicts}
		if !avail.Bookable {
			result.Message = "房间暂不开放预订"
		}
		return result, nil
	}

	view := s.rates.Quote(room.PricePerNight, st.nights).View()
	return &AvailabilityResult{Available: true, Nights: st.nights, Pricing: &view}, nil
}

// GuestDetail 同住人信息
type GuestDetail struct {
	Name string `json:"name" binding:"required,max=100"`
	Age  *int   `json:"age,omitempty" binding:"omitempty,min=0,max=150"`
}

// CreateBookingRequest 创建预订请求
type CreateBookingRequest struct {
	RoomID          int64         `json:"room_id" binding:"required,min=1"`
	HotelID         int64         `json:"hotel_id" binding:"required,min=1"`
	CheckInDate     string        `json:"check_in_date" binding:"required"`
	CheckOutDate    string        `json:"check_out_date" binding:"required"`
	GuestName       string        `json:"guest_name" binding:"required,max=100"`
	GuestEmail      string        `json:"guest_email" binding:"required,email,max=191"`
	GuestPhone      string        `json:"guest_phone" binding:"required,max=32"`
	GuestsCount     int           `json:"guests_count" binding:"required,min=1"`
	RoomsCount      int           `json:"rooms_count" binding:"omitempty,min=1"`
	GuestsDetails   []GuestDetail `json:"guests_details" binding:"omitempty,dive"`
	SpecialRequests *string       `json:"special_requests" binding:"omitempty,max=1000"`
}

// Create 创建待支付预订
// 同一房间的可用性复核与插入在房间行锁内串行执行
func (s *BookingService) Create(ctx context.Context, actor models.Actor, req *CreateBookingRequest) (*models.Booking, error) {
	ctx, span := tracing.Start(ctx, "booking.create", tracing.AttrRoomID.Int64(req.RoomID))
	defer span.End()

	st, err := s.parseStay(req.CheckInDate, req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	room, err := s.getRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room.HotelID != req.HotelID {
		return nil, errors.ErrInvalidParams.WithMessage("房间不属于该酒店")
	}
	if req.GuestsCount > room.MaxGuests {
		return nil, errors.ErrGuestCapacityExceeded
	}

	var details []byte
	if len(req.GuestsDetails) > 0 {
		if details, err = json.Marshal(req.GuestsDetails); err != nil {
			return nil, errors.ErrInvalidParams.WithError(err)
		}
	}
	roomsCount := req.RoomsCount
	if roomsCount == 0 {
		roomsCount = 1
	}

	unlock, err := s.lockRoom(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var booking *models.Booking
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.roomRepo.GetByIDForUpdate(ctx, tx, room.ID)
		if err != nil {
			return err
		}

		avail, err := s.availability.Check(ctx, tx, locked, st.checkIn, st.checkOut)
		if err != nil {
			return err
		}
		if !avail.Bookable {
			return errors.ErrRoomUnavailable.WithMessage("房间暂不开放预订")
		}
		if len(avail.Conflicts) > 0 {
			return errors.ErrRoomUnavailable.WithData(map[string]interface{}{
				"conflicting_dates": avail.Conflicts,
			})
		}

		quote := s.rates.Quote(locked.PricePerNight, st.nights)
		booking = &models.Booking{
			BookingNo:       utils.GenerateOrderNo("BK", s.clock.Now()),
			UserID:          actor.UserID,
			RoomID:          locked.ID,
			HotelID:         locked.HotelID,
			CheckInDate:     st.checkIn,
			CheckOutDate:    st.checkOut,
			TotalNights:     st.nights,
			GuestName:       req.GuestName,
			GuestEmail:      req.GuestEmail,
			GuestPhone:      req.GuestPhone,
			GuestsCount:     req.GuestsCount,
			RoomsCount:      roomsCount,
			GuestsDetails:   details,
			SpecialRequests: req.SpecialRequests,
			PricePerNight:   quote.PricePerNight,
			Subtotal:        quote.Subtotal,
			ServiceFee:      quote.ServiceFee,
			Taxes:           quote.Taxes,
			TotalAmount:     quote.Total,
			Status:          models.BookingStatusPending,
		}
		return s.bookingRepo.Create(ctx, tx, booking)
	})
	if err != nil {
		tracing.RecordError(span, err)
		if errors.Is(err, errors.ErrRoomUnavailable) || database.IsOverlapViolation(err) {
			metrics.RecordBooking(metrics.BookingUnavailable)
			if database.IsOverlapViolation(err) {
				return nil, errors.ErrRoomUnavailable.WithError(err)
			}
			return nil, err
		}
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	span.SetAttributes(tracing.AttrBookingID.Int64(booking.ID))
	metrics.RecordBooking(metrics.BookingCreated)
	logger.Info("Booking created",
		logger.BookingID(booking.ID),
		logger.RoomID(booking.RoomID),
		logger.UserID(booking.UserID),
		logger.String("total_amount", booking.TotalAmount.String()),
	)
	return booking, nil
}

// lockRoom 获取房间锁；锁被占用时直接拒绝，redis 故障时退回到仅依赖数据库行锁
func (s *BookingService) lockRoom(ctx context.Context, roomID int64) (func(), error) {
	noop := func() {}
	if s.locker == nil {
		return noop, nil
	}
	unlock, err := s.locker.Lock(ctx, roomID)
	if err == nil {
		return unlock, nil
	}
	if errors.Is(err, cache.ErrLockNotAcquired) {
		metrics.RecordBooking(metrics.BookingUnavailable)
		return nil, errors.ErrRoomUnavailable.WithMessage("房间正在被预订，请稍后重试")
	}
	logger.Warn("Room lock unavailable, relying on row lock", logger.RoomID(roomID), logger.Err(err))
	return noop, nil
}

// ListBookingsRequest 预订列表请求
type ListBookingsRequest struct {
	Scope   string `form:"scope" binding:"omitempty,oneof=upcoming past"`
	Status  string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed"`
	HotelID int64  `form:"hotel_id" binding:"omitempty,min=1"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// List 预订列表
// 普通用户只能看到自己的预订；指定 hotel_id 时，酒店业主和管理员可查看该酒店的预订
func (s *BookingService) List(ctx context.Context, actor models.Actor, req *ListBookingsRequest) ([]*models.Booking, int64, error) {
	page, perPage := database.NormalizePage(req.Page, req.PerPage)

	filter := repository.BookingFilter{
		Status: req.Status,
		Scope:  req.Scope,
		Today:  clock.Today(s.clock),
	}

	switch {
	case req.HotelID > 0 && actor.IsAdmin():
		filter.HotelID = req.HotelID
	case req.HotelID > 0 && actor.IsHotelOwner():
		owned, err := s.hotelRepo.IsOwnedBy(ctx, req.HotelID, actor.UserID)
		if err != nil {
			return nil, 0, errors.ErrDatabaseError.WithError(err)
		}
		if !owned {
			return nil, 0, errors.ErrPermissionDenied
		}
		filter.HotelID = req.HotelID
	default:
		filter.UserID = actor.UserID
	}

	bookings, total, err := s.bookingRepo.List(ctx, page, perPage, filter)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return bookings, total, nil
}

// Get 预订详情（含支付信息）
func (s *BookingService) Get(ctx context.Context, actor models.Actor, id int64) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByIDWithDetails(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if err := s.authorize(ctx, actor, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// authorize 管理员、预订人本人或酒店业主可操作
func (s *BookingService) authorize(ctx context.Context, actor models.Actor, booking *models.Booking) error {
	if actor.IsAdmin() || booking.UserID == actor.UserID {
		return nil
	}
	if actor.IsHotelOwner() {
		if booking.Hotel != nil {
			if booking.Hotel.OwnerID == actor.UserID {
				return nil
			}
			return errors.ErrPermissionDenied
		}
		owned, err := s.hotelRepo.IsOwnedBy(ctx, booking.HotelID, actor.UserID)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if owned {
			return nil
		}
	}
	return errors.ErrPermissionDenied
}

// CancelBookingRequest 取消预订请求
type CancelBookingRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=255"`
}

// RefundSummary 取消时的退款结果
type RefundSummary struct {
	Amount           string `json:"amount"`
	DaysUntilCheckIn int    `json:"days_until_check_in"`
	Reason           string `json:"reason"`
	Status           string `json:"status"`
}

// 退款处理状态
const (
	RefundStatusNone      = "none"
	RefundStatusProcessed = "processed"
	RefundStatusPending   = "pending"
)

// CancelResult 取消结果
type CancelResult struct {
	Booking *models.Booking `json:"booking"`
	Refund  *RefundSummary  `json:"refund,omitempty"`
	Warning string          `json:"warning,omitempty"`
}

// Cancel 取消预订
// 状态变更先提交，退款失败只作为警告返回，不回滚取消
func (s *BookingService) Cancel(ctx context.Context, actor models.Actor, id int64, req *CancelBookingRequest) (*CancelResult, error) {
	ctx, span := tracing.Start(ctx, "booking.cancel", tracing.AttrBookingID.Int64(id))
	defer span.End()

	booking, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	today := clock.Today(s.clock)
	if !booking.IsCancellableAt(today) {
		return nil, errors.ErrBookingNotCancellable
	}

	var (
		decision        *RefundDecision
		refundPaymentID int64
	)
	now := s.clock.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.bookingRepo.GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !locked.IsCancellableAt(today) {
			return errors.ErrBookingNotCancellable
		}

		ok, err := s.bookingRepo.TransitionStatus(ctx, tx, id, locked.Status, models.BookingStatusCancelled, map[string]interface{}{
			"cancelled_at":  now,
			"cancelled_by":  actor.UserID,
			"cancel_reason": req.Reason,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrBookingNotCancellable
		}

		payment, err := s.paymentRepo.GetByBookingID(ctx, tx, id)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if !payment.IsSucceeded() {
			return nil
		}

		d := s.policy.DecideAt(payment.Amount, locked.CheckInDate, now)
		decision = &d
		if !d.Amount.IsPositive() {
			return nil
		}
		refundPaymentID = payment.ID
		return s.paymentRepo.UpdateFields(ctx, tx, payment.ID, map[string]interface{}{"refund_due": d.Amount})
	})
	if err != nil {
		tracing.RecordError(span, err)
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	metrics.RecordBooking(metrics.BookingCancelled)
	logger.Info("Booking cancelled",
		logger.BookingID(id),
		logger.UserID(actor.UserID),
		logger.String("role", actor.Role),
	)

	result := &CancelResult{}
	if decision != nil {
		result.Refund = &RefundSummary{
			Amount:           utils.FormatMoney(decision.Amount),
			DaysUntilCheckIn: decision.DaysUntilCheckIn,
			Reason:           decision.Reason,
			Status:           RefundStatusNone,
		}
	}

	if refundPaymentID > 0 {
		result.Refund.Status = RefundStatusProcessed
		if err := s.issueRefund(ctx, refundPaymentID); err != nil {
			tracing.RecordError(span, err)
			logger.Warn("Refund failed after cancellation",
				logger.BookingID(id),
				logger.Int64("payment_id", refundPaymentID),
				logger.Err(err),
			)
			result.Refund.Status = RefundStatusPending
			result.Warning = errors.ErrRefundFailed.Message
		}
	}

	result.Booking, err = s.bookingRepo.GetByIDWithDetails(ctx, id)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return result, nil
}

func (s *BookingService) issueRefund(ctx context.Context, paymentID int64) error {
	if s.refunder == nil {
		return errors.ErrRefundFailed.WithMessage("未配置退款渠道")
	}
	_, err := s.refunder.Refund(ctx, paymentID)
	return err
}

// CompleteFinished 将已离店的确认预订标记为完成，返回处理条数
func (s *BookingService) CompleteFinished(ctx context.Context, limit int) (int, error) {
	today := clock.Today(s.clock)
	bookings, err := s.bookingRepo.ListFinished(ctx, today, limit)
	if err != nil {
		return 0, err
	}

	completed := 0
	now := s.clock.Now()
	for _, b := range bookings {
		ok, err := s.bookingRepo.TransitionStatus(ctx, nil, b.ID, models.BookingStatusConfirmed, models.BookingStatusCompleted, map[string]interface{}{
			"completed_at": now,
		})
		if err != nil {
			logger.Error("Complete booking failed", logger.BookingID(b.ID), logger.Err(err))
			continue
		}
		if ok {
			completed++
			metrics.RecordBooking(metrics.BookingCompleted)
			logger.Info("Booking completed", logger.BookingID(b.ID))
		}
	}
	return completed, nil
}

// Receipt 预订凭证
type Receipt struct {
	BookingNo    string          `json:"booking_no"`
	Status       string          `json:"status"`
	HotelName    string          `json:"hotel_name"`
	HotelAddress string          `json:"hotel_address"`
	HotelCity    string          `json:"hotel_city"`
	RoomName     string          `json:"room_name"`
	RoomType     string          `json:"room_type"`
	CheckInDate  string          `json:"check_in_date"`
	CheckOutDate string          `json:"check_out_date"`
	GuestName    string          `json:"guest_name"`
	GuestsCount  int             `json:"guests_count"`
	Pricing      PricingView     `json:"pricing"`
	Payment      *ReceiptPayment `json:"payment,omitempty"`
	QRCode       string          `json:"qr_code"`
	IssuedAt     time.Time       `json:"issued_at"`
}

// ReceiptPayment 凭证上的支付信息
type ReceiptPayment struct {
	Status         string     `json:"status"`
	Amount         string     `json:"amount"`
	RefundedAmount string     `json:"refunded_amount"`
	CardBrand      string     `json:"card_brand,omitempty"`
	CardLast4      string     `json:"card_last4,omitempty"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	// 若此刻取消可退金额，仅在预订仍可取消时返回
	RefundIfCancelled string `json:"refund_if_cancelled,omitempty"`
}

// Receipt 生成预订凭证，二维码内容见 qrcode.ReceiptContent
func (s *BookingService) Receipt(ctx context.Context, actor models.Actor, id int64) (*Receipt, error) {
	booking, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	qr, err := s.qr.DataURL(qrcode.ReceiptContent(booking.BookingNo, booking.CheckInDate))
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	receipt := &Receipt{
		BookingNo:    booking.BookingNo,
		Status:       booking.Status,
		CheckInDate:  booking.CheckInDate.Format(dateLayout),
		CheckOutDate: booking.CheckOutDate.Format(dateLayout),
		GuestName:    booking.GuestName,
		GuestsCount:  booking.GuestsCount,
		Pricing:      bookingQuote(booking).View(),
		QRCode:       qr,
		IssuedAt:     s.clock.Now(),
	}
	if booking.Hotel != nil {
		receipt.HotelName = booking.Hotel.Name
		receipt.HotelAddress = booking.Hotel.Address
		receipt.HotelCity = booking.Hotel.City
	}
	if booking.Room != nil {
		receipt.RoomName = booking.Room.Name
		receipt.RoomType = booking.Room.Type
	}
	if p := booking.Payment; p != nil {
		receipt.Payment = &ReceiptPayment{
			Status:         p.Status,
			Amount:         utils.FormatMoney(p.Amount),
			RefundedAmount: utils.FormatMoney(p.RefundedAmount),
			CardBrand:      utils.SafeString(p.CardBrand),
			CardLast4:      utils.SafeString(p.CardLast4),
			PaidAt:         p.PaidAt,
		}
		if p.IsSucceeded() && booking.IsCancellableAt(clock.Today(s.clock)) {
			receipt.Payment.RefundIfCancelled = utils.FormatMoney(s.ComputeRefund(booking, p).Amount)
		}
	}
	return receipt, nil
}

// VerifyReceipt 前台扫码核验凭证，仅酒店业主和管理员可用
func (s *BookingService) VerifyReceipt(ctx context.Context, actor models.Actor, content string) (*models.Booking, error) {
	if !actor.IsAdmin() && !actor.IsHotelOwner() {
		return nil, errors.ErrPermissionDenied
	}
	bookingNo, checkIn, err := qrcode.ParseReceiptContent(content)
	if err != nil {
		return nil, errors.ErrInvalidParams.WithMessage("凭证二维码无法识别")
	}

	found, err := s.bookingRepo.GetByBookingNo(ctx, bookingNo)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !clock.Date(found.CheckInDate).Equal(checkIn) {
		return nil, errors.ErrInvalidParams.WithMessage("凭证与预订信息不一致")
	}

	booking, err := s.Get(ctx, actor, found.ID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, errors.ErrBookingStatusError.WithMessage("预订未确认，不能办理入住")
	}
	logger.Info("Booking receipt verified", logger.BookingID(booking.ID), logger.UserID(actor.UserID))
	return booking, nil
}

// bookingQuote 使用预订时的快照金额，不重新计算
func bookingQuote(b *models.Booking) Quote {
	return Quote{
		PricePerNight: b.PricePerNight,
		Nights:        b.TotalNights,
		Subtotal:      b.Subtotal,
		ServiceFee:    b.ServiceFee,
		Taxes:         b.Taxes,
		Total:         b.TotalAmount,
	}
}

// ComputeRefund 按退款规则计算指定预订当前可退金额
func (s *BookingService) ComputeRefund(booking *models.Booking, payment *models.Payment) RefundDecision {
	if payment == nil || !payment.IsSucceeded() {
		return RefundDecision{Amount: decimal.Zero, DaysUntilCheckIn: clock.DaysBetween(s.clock.Now(), booking.CheckInDate), Reason: RefundReasonNotPaid}
	}
	return s.policy.DecideAt(payment.Amount, booking.CheckInDate, s.clock.Now())
}

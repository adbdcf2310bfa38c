package hotel

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
)

const dateLayout = "2006-01-02"

// DateRange 半开区间 [CheckIn, CheckOut)
type DateRange struct {
	CheckIn  string `json:"check_in_date"`
	CheckOut string `json:"check_out_date"`
}

// Availability 可用性结果
type Availability struct {
	Available bool
	Bookable  bool // 房间开放预订（is_available && is_active）
	Conflicts []DateRange
}

// AvailabilityEngine 根据房间状态和已有预订计算可用性
// 可用性完全由预订记录推导，不维护计数器
type AvailabilityEngine struct {
	bookingRepo *repository.BookingRepository
}

// NewAvailabilityEngine 创建可用性引擎
func NewAvailabilityEngine(bookingRepo *repository.BookingRepository) *AvailabilityEngine {
	return &AvailabilityEngine{bookingRepo: bookingRepo}
}

// Check 检查房间在 [checkIn, checkOut) 内是否可用，tx 非空时在事务内查询
func (e *AvailabilityEngine) Check(ctx context.Context, tx *gorm.DB, room *models.Room, checkIn, checkOut time.Time) (*Availability, error) {
	result := &Availability{Bookable: room.Bookable()}

	overlapping, err := e.bookingRepo.FindOverlapping(ctx, tx, room.ID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	for _, b := range overlapping {
		// 以日期值复核查询结果
		if !b.Overlaps(checkIn, checkOut) {
			continue
		}
		result.Conflicts = append(result.Conflicts, DateRange{
			CheckIn:  b.CheckInDate.Format(dateLayout),
			CheckOut: b.CheckOutDate.Format(dateLayout),
		})
	}

	result.Available = result.Bookable && len(result.Conflicts) == 0
	return result, nil
}

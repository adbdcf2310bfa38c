package hotel

import (
	"context"
	stderrors "errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
)

// PriceDrop 房间降价事件
type PriceDrop struct {
	RoomID    int64           `json:"room_id"`
	RoomName  string          `json:"room_name"`
	HotelID   int64           `json:"hotel_id"`
	HotelName string          `json:"hotel_name"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
	UserIDs   []int64         `json:"user_ids"`
}

// PriceDropNotifier 降价通知
type PriceDropNotifier interface {
	NotifyPriceDrop(ctx context.Context, event *PriceDrop) error
}

// RoomService 房间管理服务
type RoomService struct {
	db        *gorm.DB
	roomRepo  *repository.RoomRepository
	hotelRepo *repository.HotelRepository
	favorites *FavoriteService
	notifier  PriceDropNotifier
}

// NewRoomService 创建房间管理服务
func NewRoomService(
	db *gorm.DB,
	roomRepo *repository.RoomRepository,
	hotelRepo *repository.HotelRepository,
	favorites *FavoriteService,
	notifier PriceDropNotifier,
) *RoomService {
	return &RoomService{
		db:        db,
		roomRepo:  roomRepo,
		hotelRepo: hotelRepo,
		favorites: favorites,
		notifier:  notifier,
	}
}

// UpdateRoomRequest 更新房间请求，未传的字段保持不变
type UpdateRoomRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Type          *string          `json:"type" binding:"omitempty,oneof=single double suite family"`
	PricePerNight *decimal.Decimal `json:"price_per_night"`
	MaxGuests     *int             `json:"max_guests" binding:"omitempty,min=1"`
	IsAvailable   *bool            `json:"is_available"`
	IsActive      *bool            `json:"is_active"`
}

func (r *UpdateRoomRequest) fields() (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Type != nil {
		fields["type"] = *r.Type
	}
	if r.PricePerNight != nil {
		if r.PricePerNight.IsNegative() {
			return nil, errors.ErrInvalidParams.WithMessage("价格不能为负数")
		}
		if !r.PricePerNight.Equal(r.PricePerNight.Truncate(2)) {
			return nil, errors.ErrInvalidParams.WithMessage("价格最多保留两位小数")
		}
		fields["price_per_night"] = *r.PricePerNight
	}
	if r.MaxGuests != nil {
		if *r.MaxGuests < 1 {
			return nil, errors.ErrInvalidParams.WithMessage("最大入住人数至少为1")
		}
		fields["max_guests"] = *r.MaxGuests
	}
	if r.IsAvailable != nil {
		fields["is_available"] = *r.IsAvailable
	}
	if r.IsActive != nil {
		fields["is_active"] = *r.IsActive
	}
	return fields, nil
}

// UpdateRoom 酒店业主或管理员更新房间
// 已有预订的价格是快照，不受影响；降价时通知收藏了该房间或酒店的用户
func (s *RoomService) UpdateRoom(ctx context.Context, actor models.Actor, id int64, req *UpdateRoomRequest) (*models.Room, error) {
	fields, err := req.fields()
	if err != nil {
		return nil, err
	}

	room, err := s.roomRepo.GetByIDWithHotel(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if !actor.IsAdmin() {
		owned, err := s.hotelRepo.IsOwnedBy(ctx, room.HotelID, actor.UserID)
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
		if !owned {
			return nil, errors.ErrPermissionDenied
		}
	}

	oldPrice := room.PricePerNight
	if len(fields) > 0 {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if _, err := s.roomRepo.GetByIDForUpdate(ctx, tx, id); err != nil {
				return err
			}
			return s.roomRepo.UpdateFields(ctx, tx, id, fields)
		})
		if err != nil {
			return nil, errors.ErrDatabaseError.WithError(err)
		}
	}

	updated, err := s.roomRepo.GetByIDWithHotel(ctx, id)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	logger.Info("Room updated", logger.RoomID(id), logger.UserID(actor.UserID), logger.Any("fields", keys(fields)))

	if updated.PricePerNight.LessThan(oldPrice) {
		s.notifyPriceDrop(ctx, updated, oldPrice)
	}
	return updated, nil
}

// notifyPriceDrop 通知失败只记录日志，不影响房间更新
func (s *RoomService) notifyPriceDrop(ctx context.Context, room *models.Room, oldPrice decimal.Decimal) {
	if s.notifier == nil || s.favorites == nil {
		return
	}

	userIDs, err := s.favorites.Subscribers(ctx, models.RoomRef(room.ID), models.HotelRef(room.HotelID))
	if err != nil {
		logger.Error("Load price drop subscribers failed", logger.RoomID(room.ID), logger.Err(err))
		return
	}
	if len(userIDs) == 0 {
		return
	}

	event := &PriceDrop{
		RoomID:   room.ID,
		RoomName: room.Name,
		HotelID:  room.HotelID,
		OldPrice: oldPrice,
		NewPrice: room.PricePerNight,
		UserIDs:  userIDs,
	}
	if room.Hotel != nil {
		event.HotelName = room.Hotel.Name
	}
	if err := s.notifier.NotifyPriceDrop(ctx, event); err != nil {
		logger.Error("Notify price drop failed", logger.RoomID(room.ID), logger.Int("subscribers", len(userIDs)), logger.Err(err))
	}
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

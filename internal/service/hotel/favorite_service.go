package hotel

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/database"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
)

// FavoriteTarget 收藏对象的展示信息
type FavoriteTarget struct {
	Ref     models.TargetRef `json:"target"`
	Name    string           `json:"name"`
	HotelID int64            `json:"hotel_id"`
}

type targetResolver func(ctx context.Context, id int64) (*FavoriteTarget, error)

// FavoriteService 收藏服务
type FavoriteService struct {
	favoriteRepo *repository.FavoriteRepository
	resolvers    map[models.TargetType]targetResolver
}

// NewFavoriteService 创建收藏服务
func NewFavoriteService(favoriteRepo *repository.FavoriteRepository, hotelRepo *repository.HotelRepository, roomRepo *repository.RoomRepository) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		resolvers: map[models.TargetType]targetResolver{
			models.TargetHotel: func(ctx context.Context, id int64) (*FavoriteTarget, error) {
				h, err := hotelRepo.GetByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return &FavoriteTarget{Ref: models.HotelRef(h.ID), Name: h.Name, HotelID: h.ID}, nil
			},
			models.TargetRoom: func(ctx context.Context, id int64) (*FavoriteTarget, error) {
				r, err := roomRepo.GetByID(ctx, id)
				if err != nil {
					return nil, err
				}
				return &FavoriteTarget{Ref: models.RoomRef(r.ID), Name: r.Name, HotelID: r.HotelID}, nil
			},
		},
	}
}

// Resolve 加载收藏对象
func (s *FavoriteService) Resolve(ctx context.Context, ref models.TargetRef) (*FavoriteTarget, error) {
	resolve, ok := s.resolvers[ref.Type]
	if !ok {
		return nil, errors.ErrInvalidParams.WithMessage("不支持的收藏类型")
	}
	target, err := resolve(ctx, ref.ID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrFavoriteTargetNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return target, nil
}

// FavoriteRequest 收藏请求
type FavoriteRequest struct {
	TargetType string `json:"target_type" form:"target_type" binding:"required,oneof=hotel room"`
	TargetID   int64  `json:"target_id" form:"target_id" binding:"required,min=1"`
}

// Ref 转换为收藏引用
func (r *FavoriteRequest) Ref() (models.TargetRef, error) {
	ref, err := models.ParseTargetRef(r.TargetType, r.TargetID)
	if err != nil {
		return models.TargetRef{}, errors.ErrInvalidParams.WithMessage(err.Error())
	}
	return ref, nil
}

// Add 添加收藏，重复收藏不报错
func (s *FavoriteService) Add(ctx context.Context, userID int64, req *FavoriteRequest) (*FavoriteTarget, error) {
	ref, err := req.Ref()
	if err != nil {
		return nil, err
	}
	target, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.favoriteRepo.Add(ctx, userID, ref); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return target, nil
}

// Remove 取消收藏
func (s *FavoriteService) Remove(ctx context.Context, userID int64, req *FavoriteRequest) error {
	ref, err := req.Ref()
	if err != nil {
		return err
	}
	removed, err := s.favoriteRepo.Remove(ctx, userID, ref)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if !removed {
		return errors.ErrNotFound.WithMessage("未收藏该对象")
	}
	return nil
}

// FavoriteInfo 收藏列表项
type FavoriteInfo struct {
	ID        int64            `json:"id"`
	Target    models.TargetRef `json:"target"`
	Name      string           `json:"name,omitempty"`
	HotelID   int64            `json:"hotel_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// List 收藏列表，已删除的对象保留条目但不带名称
func (s *FavoriteService) List(ctx context.Context, userID int64, page, perPage int) ([]*FavoriteInfo, int64, error) {
	page, perPage = database.NormalizePage(page, perPage)
	favorites, total, err := s.favoriteRepo.ListByUser(ctx, userID, (page-1)*perPage, perPage)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	list := make([]*FavoriteInfo, 0, len(favorites))
	for _, f := range favorites {
		info := &FavoriteInfo{ID: f.ID, Target: f.Target(), CreatedAt: f.CreatedAt}
		if target, err := s.Resolve(ctx, f.Target()); err == nil {
			info.Name = target.Name
			info.HotelID = target.HotelID
		}
		list = append(list, info)
	}
	return list, total, nil
}

// Subscribers 收藏了任一对象的用户
func (s *FavoriteService) Subscribers(ctx context.Context, refs ...models.TargetRef) ([]int64, error) {
	return s.favoriteRepo.ListUserIDsByTargets(ctx, refs...)
}

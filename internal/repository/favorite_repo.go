package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// FavoriteRepository 收藏仓储
type FavoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository 创建收藏仓储
func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add 添加收藏，重复收藏忽略
func (r *FavoriteRepository) Add(ctx context.Context, userID int64, ref models.TargetRef) error {
	fav := &models.Favorite{UserID: userID, TargetType: ref.Type, TargetID: ref.ID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(fav).Error
}

// Remove 取消收藏
func (r *FavoriteRepository) Remove(ctx context.Context, userID int64, ref models.TargetRef) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, ref.Type, ref.ID).
		Delete(&models.Favorite{})
	return result.RowsAffected > 0, result.Error
}

// ListByUser 获取用户收藏列表
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*models.Favorite, int64, error) {
	var favorites []*models.Favorite
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Favorite{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&favorites).Error; err != nil {
		return nil, 0, err
	}
	return favorites, total, nil
}

// ListUserIDsByTargets 获取收藏了任一目标的用户 ID（去重）
func (r *FavoriteRepository) ListUserIDsByTargets(ctx context.Context, refs ...models.TargetRef) ([]int64, error) {
	var userIDs []int64
	if len(refs) == 0 {
		return userIDs, nil
	}

	cond := r.db.Where("target_type = ? AND target_id = ?", refs[0].Type, refs[0].ID)
	for _, ref := range refs[1:] {
		cond = cond.Or("target_type = ? AND target_id = ?", ref.Type, ref.ID)
	}

	err := r.db.WithContext(ctx).Model(&models.Favorite{}).
		Where(cond).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

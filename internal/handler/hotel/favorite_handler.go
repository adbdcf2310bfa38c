package hotel

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	hotelService "github.com/dumeirei/hotel-booking-backend/internal/service/hotel"
)

// FavoriteHandler 收藏处理器
type FavoriteHandler struct {
	favoriteService *hotelService.FavoriteService
	perPage         int
}

// NewFavoriteHandler 创建收藏处理器
func NewFavoriteHandler(favoriteSvc *hotelService.FavoriteService, perPage int) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteSvc, perPage: perPage}
}

// AddFavorite 收藏酒店或房间
// @Summary 添加收藏
// @Tags 收藏
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body hotelService.FavoriteRequest true "请求参数"
// @Success 201 {object} response.Response{data=hotelService.FavoriteTarget}
// @Router /api/v1/favorites [post]
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	var req hotelService.FavoriteRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	target, err := h.favoriteService.Add(c.Request.Context(), actor.UserID, &req)
	handler.MustSucceedCreated(c, err, target)
}

// RemoveFavorite 取消收藏
// @Summary 取消收藏
// @Tags 收藏
// @Produce json
// @Security Bearer
// @Param target_type query string true "hotel 或 room"
// @Param target_id query int true "对象ID"
// @Success 200 {object} response.Response
// @Router /api/v1/favorites [delete]
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	var req hotelService.FavoriteRequest
	if !handler.BindQuery(c, &req) {
		return
	}

	err := h.favoriteService.Remove(c.Request.Context(), actor.UserID, &req)
	handler.MustSucceedWithMessage(c, err, "已取消收藏", nil)
}

// ListFavorites 收藏列表
// @Summary 收藏列表
// @Tags 收藏
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param per_page query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData{list=[]hotelService.FavoriteInfo}}
// @Router /api/v1/favorites [get]
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	p := handler.BindPagination(c, h.perPage)
	list, total, err := h.favoriteService.List(c.Request.Context(), actor.UserID, p.Page, p.PerPage)
	handler.MustSucceedPage(c, err, list, total, p.Page, p.PerPage)
}

// RegisterRoutes 注册路由
func (h *FavoriteHandler) RegisterRoutes(authed *gin.RouterGroup) {
	favorites := authed.Group("/favorites")
	{
		favorites.POST("", h.AddFavorite)
		favorites.DELETE("", h.RemoveFavorite)
		favorites.GET("", h.ListFavorites)
	}
}

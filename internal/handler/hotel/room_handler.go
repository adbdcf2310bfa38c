package hotel

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	hotelService "github.com/dumeirei/hotel-booking-backend/internal/service/hotel"
)

// RoomHandler 房间管理处理器
type RoomHandler struct {
	roomService *hotelService.RoomService
}

// NewRoomHandler 创建房间管理处理器
func NewRoomHandler(roomSvc *hotelService.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomSvc}
}

// UpdateRoom 更新房间
// @Summary 更新房间信息
// @Description 降价时通知收藏了该房间或所属酒店的用户
// @Tags 房间管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Param request body hotelService.UpdateRoomRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Room}
// @Failure 403 {object} response.Response
// @Router /api/v1/admin/rooms/{id} [put]
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	var req hotelService.UpdateRoomRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	room, err := h.roomService.UpdateRoom(c.Request.Context(), actor, id, &req)
	handler.MustSucceed(c, err, room)
}

// RegisterAdminRoutes 注册管理路由，调用方负责角色校验
func (h *RoomHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.PUT("/rooms/:id", h.UpdateRoom)
}

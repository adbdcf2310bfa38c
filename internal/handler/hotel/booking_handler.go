// Package hotel 提供酒店预订相关的 HTTP Handler
package hotel

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
	hotelService "github.com/dumeirei/hotel-booking-backend/internal/service/hotel"
)

// BookingHandler 预订处理器
type BookingHandler struct {
	bookingService *hotelService.BookingService
	perPage        int
}

// NewBookingHandler 创建预订处理器
func NewBookingHandler(bookingSvc *hotelService.BookingService, perPage int) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingSvc,
		perPage:        perPage,
	}
}

// CheckAvailability 查询可用性与报价
// @Summary 查询房间可用性
// @Tags 预订
// @Accept json
// @Produce json
// @Param request body hotelService.CheckAvailabilityRequest true "请求参数"
// @Success 200 {object} response.Response{data=hotelService.AvailabilityResult}
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /api/v1/bookings/check-availability [post]
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var req hotelService.CheckAvailabilityRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.bookingService.CheckAvailability(c.Request.Context(), &req)
	handler.MustSucceed(c, err, result)
}

// CreateBooking 创建预订
// @Summary 创建预订
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body hotelService.CreateBookingRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.Booking}
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /api/v1/bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	var req hotelService.CreateBookingRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), actor, &req)
	handler.MustSucceedCreated(c, err, booking)
}

// ListBookings 预订列表
// @Summary 预订列表
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param scope query string false "upcoming 或 past"
// @Param status query string false "状态"
// @Param hotel_id query int false "酒店ID（业主与管理员）"
// @Param page query int false "页码"
// @Param per_page query int false "每页数量"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.Booking}}
// @Router /api/v1/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	var req hotelService.ListBookingsRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c, h.perPage)
	req.Page, req.PerPage = p.Page, p.PerPage

	bookings, total, err := h.bookingService.List(c.Request.Context(), actor, &req)
	handler.MustSucceedPage(c, err, bookings, total, p.Page, p.PerPage)
}

// GetBooking 预订详情
// @Summary 预订详情
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=models.Booking}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	booking, err := h.bookingService.Get(c.Request.Context(), actor, id)
	handler.MustSucceed(c, err, booking)
}

// GetReceipt 预订凭证
// @Summary 预订凭证
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=hotelService.Receipt}
// @Router /api/v1/bookings/{id}/receipt [get]
func (h *BookingHandler) GetReceipt(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	receipt, err := h.bookingService.Receipt(c.Request.Context(), actor, id)
	handler.MustSucceed(c, err, receipt)
}

// CancelBooking 取消预订
// @Summary 取消预订
// @Description 入住日前可取消；已支付的预订距入住不少于 7 天退还 50%
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body hotelService.CancelBookingRequest false "取消原因"
// @Success 200 {object} response.Response{data=hotelService.CancelResult}
// @Failure 400 {object} response.Response
// @Router /api/v1/bookings/{id}/cancel [put]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	var req hotelService.CancelBookingRequest
	if c.Request.ContentLength > 0 && !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.bookingService.Cancel(c.Request.Context(), actor, id, &req)
	if handler.HandleError(c, err) {
		return
	}
	message := "预订已取消"
	if result.Warning != "" {
		message = result.Warning
	}
	response.SuccessWithMessage(c, message, result)
}

// VerifyReceiptRequest 凭证核验请求
type VerifyReceiptRequest struct {
	Content string `json:"content" binding:"required,max=200"`
}

// VerifyReceipt 核验预订凭证
// @Summary 前台扫码核验预订凭证
// @Tags 预订管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body VerifyReceiptRequest true "二维码内容"
// @Success 200 {object} response.Response{data=models.Booking}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/bookings/verify [post]
func (h *BookingHandler) VerifyReceipt(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}
	var req VerifyReceiptRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	booking, err := h.bookingService.VerifyReceipt(c.Request.Context(), actor, req.Content)
	handler.MustSucceed(c, err, booking)
}

// RegisterAdminRoutes 注册管理端路由
func (h *BookingHandler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	admin.POST("/bookings/verify", h.VerifyReceipt)
}

// RegisterRoutes 注册路由
// quote 为可用性查询单独挂载的中间件（限流）
func (h *BookingHandler) RegisterRoutes(public, authed *gin.RouterGroup, quote ...gin.HandlerFunc) {
	public.POST("/bookings/check-availability", append(quote, h.CheckAvailability)...)

	bookings := authed.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/:id/receipt", h.GetReceipt)
		bookings.PUT("/:id/cancel", h.CancelBooking)
	}
}

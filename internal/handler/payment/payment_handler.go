// Package payment 提供支付相关的 HTTP Handler
package payment

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
	paymentService "github.com/dumeirei/hotel-booking-backend/internal/service/payment"
)

// MaxWebhookBodySize 回调请求体上限
const MaxWebhookBodySize = 64 << 10

// SignatureHeader 渠道签名请求头
const SignatureHeader = "Stripe-Signature"

// Handler 支付处理器
type Handler struct {
	paymentService *paymentService.PaymentService
}

// NewHandler 创建支付处理器
func NewHandler(paymentSvc *paymentService.PaymentService) *Handler {
	return &Handler{
		paymentService: paymentSvc,
	}
}

// CreateIntent 创建支付意图
// @Summary 创建支付意图
// @Tags 支付
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body paymentService.CreateIntentRequest true "请求参数"
// @Success 200 {object} response.Response{data=paymentService.IntentResult}
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/v1/payments/create-intent [post]
func (h *Handler) CreateIntent(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	var req paymentService.CreateIntentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.CreateIntent(c.Request.Context(), actor, &req)
	handler.MustSucceed(c, err, result)
}

// Confirm 确认支付
// @Summary 确认支付
// @Description 以渠道查询结果为准确认预订，重复确认返回当前状态
// @Tags 支付
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body paymentService.ConfirmRequest true "请求参数"
// @Success 200 {object} response.Response{data=paymentService.ConfirmResult}
// @Failure 400 {object} response.Response
// @Router /api/v1/payments/confirm [post]
func (h *Handler) Confirm(c *gin.Context) {
	actor, ok := handler.RequireActor(c)
	if !ok {
		return
	}

	var req paymentService.ConfirmRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.Confirm(c.Request.Context(), actor, &req)
	handler.MustSucceed(c, err, result)
}

// Webhook 渠道支付回调
// @Summary 支付渠道回调
// @Tags 支付
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "签名"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} response.Response
// @Router /api/v1/payments/webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			response.Error(c, http.StatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, "请求体过大")
			return
		}
		response.BadRequest(c, "读取请求体失败")
		return
	}

	err = h.paymentService.HandleWebhook(c.Request.Context(), body, c.GetHeader(SignatureHeader))
	if handler.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	payments := r.Group("/payments")
	{
		payments.POST("/create-intent", h.CreateIntent)
		payments.POST("/confirm", h.Confirm)
	}
}

// RegisterCallbackRoutes 注册回调路由（无需认证，依赖签名校验）
func (h *Handler) RegisterCallbackRoutes(r *gin.RouterGroup) {
	r.POST("/payments/webhook", h.Webhook)
}

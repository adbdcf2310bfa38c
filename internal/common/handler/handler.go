// Package handler 提供 API Handler 的通用辅助函数
// 用于减少 Handler 层的代码重复，统一错误处理、认证检查、参数解析等操作
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/database"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// ============================================================================
// 统一错误处理
// ============================================================================

// HandleError 处理错误并发送适当的响应
// 如果 err 为 nil，返回 false（表示无错误需要处理）
// 如果 err 不为 nil，发送错误响应并返回 true（调用方应该 return）
//
// 使用示例:
//
//	result, err := service.DoSomething(ctx)
//	if handler.HandleError(c, err) {
//	    return
//	}
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if !errors.IsAppError(err) {
		logger.Error("unhandled error",
			logger.RequestID(middleware.GetRequestID(c)),
			logger.String("path", c.Request.URL.Path),
			logger.Err(err),
		)
		response.InternalError(c, "服务器内部错误")
		return true
	}

	appErr := errors.GetAppError(err)
	status := errors.HTTPStatus(appErr)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logger.RequestID(middleware.GetRequestID(c)),
			logger.Int("code", appErr.Code),
			logger.Err(err),
		)
	}
	if appErr.Data != nil {
		response.ErrorWithData(c, status, appErr.Code, appErr.Message, appErr.Data)
	} else {
		response.Error(c, status, appErr.Code, appErr.Message)
	}
	c.Error(err) //nolint:errcheck
	return true
}

// MustSucceed 有错误则返回错误响应，否则返回成功响应
// 调用 MustSucceed 后必须 return
func MustSucceed(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Success(c, data)
}

// MustSucceedCreated 创建类接口，成功返回 201
func MustSucceedCreated(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Created(c, data)
}

// MustSucceedWithMessage 带自定义成功消息
func MustSucceedWithMessage(c *gin.Context, err error, message string, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.SuccessWithMessage(c, message, data)
}

// MustSucceedPage 分页响应版本
func MustSucceedPage(c *gin.Context, err error, list interface{}, total int64, page, pageSize int) {
	if HandleError(c, err) {
		return
	}
	response.SuccessPage(c, list, total, page, pageSize)
}

// ============================================================================
// 认证检查
// ============================================================================

// RequireActor 获取当前操作人，未登录时返回 401 响应
//
//	actor, ok := handler.RequireActor(c)
//	if !ok {
//	    return
//	}
func RequireActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "请先登录")
		return models.Actor{}, false
	}
	return actor, true
}

// ============================================================================
// 参数解析
// ============================================================================

// ParseID 解析路径参数 "id" 为 int64
func ParseID(c *gin.Context, resourceName string) (int64, bool) {
	return ParseParamID(c, "id", resourceName)
}

// ParseParamID 解析指定路径参数为正整数 ID
func ParseParamID(c *gin.Context, paramName, resourceName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(paramName), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return 0, false
	}
	return id, true
}

// BindJSON 绑定 JSON 请求体，校验失败返回 422
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ValidationFailed(c, "参数错误: "+err.Error())
		return false
	}
	return true
}

// BindQuery 绑定查询参数，校验失败返回 422
func BindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.ValidationFailed(c, "参数错误: "+err.Error())
		return false
	}
	return true
}

// Pagination 分页参数
type Pagination struct {
	Page    int
	PerPage int
}

// BindPagination 从查询参数 page、per_page 绑定并规范化分页参数
func BindPagination(c *gin.Context, defaultPerPage int) Pagination {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	page, perPage = database.NormalizePage(page, perPage)
	return Pagination{Page: page, PerPage: perPage}
}

package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
)

// RequireRoles 角色校验中间件，需在 Auth 之后使用
func RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		if GetUserID(c) <= 0 {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		if _, ok := allowed[GetRole(c)]; !ok {
			response.Forbidden(c, "无权访问")
			c.Abort()
			return
		}
		c.Next()
	}
}

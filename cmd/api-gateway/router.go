// Package main 是应用程序入口
package main

import (
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/docs"
	"github.com/dumeirei/hotel-booking-backend/internal/app"
	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/dumeirei/hotel-booking-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	hotelHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/hotel"
	paymentHandler "github.com/dumeirei/hotel-booking-backend/internal/handler/payment"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/internal/service/notification"
)

// setupRouter 设置路由
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	queue *asynq.Client,
) error {
	// 创建 JWT 管理器
	jwtManager := jwt.NewManager(&jwt.Config{
		Secret:           cfg.JWT.Secret,
		AccessExpireTime: cfg.JWT.AccessTokenDuration(),
		Issuer:           cfg.JWT.Issuer,
	})

	// 初始化服务
	dispatcher := notification.NewDispatcher(queue, repository.NewNotificationRepository(db))
	svcs, err := app.NewServices(cfg, db, app.Options{
		Locker:   cache.NewRoomLocker(redisClient, cfg.Business.Booking.RoomLockTTL()),
		Notifier: dispatcher,
	})
	if err != nil {
		return err
	}

	// 初始化处理器
	perPage := cfg.Business.Booking.PerPage
	bookingH := hotelHandler.NewBookingHandler(svcs.Booking, perPage)
	favoriteH := hotelHandler.NewFavoriteHandler(svcs.Favorite, perPage)
	roomH := hotelHandler.NewRoomHandler(svcs.Room)
	paymentH := paymentHandler.NewHandler(svcs.Payment)

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(&cfg.CORS))
	r.Use(middleware.Tracing("/health", "/ready", cfg.Metrics.Path))
	r.Use(middleware.AccessLog(logger, "/health", "/ready", cfg.Metrics.Path))

	if cfg.Metrics.Enabled {
		m := metrics.Init(cfg.Server.Name)
		r.Use(m.Middleware())
		r.GET(cfg.Metrics.Path, m.Handler())
	}

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	// Swagger 文档，发布模式不开放
	if !cfg.IsRelease() {
		docs.SwaggerInfo.Title = cfg.Server.Name
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// 可用性查询限流
	var quote []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		quote = append(quote, middleware.RateLimit(&middleware.RateLimitConfig{
			RedisClient: redisClient,
			Limit:       cfg.RateLimit.Limit,
			Window:      cfg.RateLimit.Window(),
		}))
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RequestSizeLimiter(1 << 20))
	{
		// 公开接口；可用性查询允许匿名，登录时按用户限流
		public := v1.Group("", middleware.OptionalAuth(jwtManager))

		// 支付回调（需要验签，不需要认证）
		paymentH.RegisterCallbackRoutes(v1)

		// 用户端接口（需要认证）
		authed := v1.Group("", middleware.Auth(jwtManager))
		bookingH.RegisterRoutes(public, authed, quote...)
		paymentH.RegisterRoutes(authed)
		favoriteH.RegisterRoutes(authed)

		// 管理接口
		admin := authed.Group("/admin", middleware.RequireRoles(models.RoleHotelOwner, models.RoleAdmin))
		roomH.RegisterAdminRoutes(admin)
		bookingH.RegisterAdminRoutes(admin)
	}
	return nil
}

// Package main 是异步任务与定时任务进程入口
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-booking-backend/internal/app"
	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/dumeirei/hotel-booking-backend/internal/common/database"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/internal/scheduler"
	"github.com/dumeirei/hotel-booking-backend/internal/service/notification"
	"github.com/dumeirei/hotel-booking-backend/pkg/sms"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	log := logger.GetLogger()
	log.Info("Starting Hotel Booking worker", zap.String("env", cfg.Server.Mode))

	db, err := database.Init(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close() //nolint:errcheck

	redisOpt := notification.RedisOpt(&cfg.Redis)
	queue := asynq.NewClient(redisOpt)
	defer queue.Close()

	notificationRepo := repository.NewNotificationRepository(db)
	dispatcher := notification.NewDispatcher(queue, notificationRepo)

	// 定时任务不需要房间锁
	svcs, err := app.NewServices(cfg, db, app.Options{Notifier: dispatcher})
	if err != nil {
		log.Fatal("Failed to init services", zap.Error(err))
	}

	// 通知任务
	worker := notification.NewWorker(
		repository.NewBookingRepository(db),
		repository.NewUserRepository(db),
		notificationRepo,
		notification.NewLogMailer(log),
	)
	if cfg.SMS.Enabled {
		worker.WithSMS(newSMSSender(&cfg.SMS, log), cfg.SMS.ConfirmTemplate)
	}
	mux := asynq.NewServeMux()
	worker.Register(mux)

	srv := notification.NewServer(redisOpt, &cfg.Queue)
	if err := srv.Start(mux); err != nil {
		log.Fatal("Failed to start task server", zap.Error(err))
	}

	// 定时任务
	sched := scheduler.NewScheduler(log)
	scheduler.NewTaskHandler(svcs.Booking, svcs.Payment).Register(sched, &cfg.Business.Booking)
	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker...")
	sched.Stop()
	srv.Shutdown()
	log.Info("Worker exited")
}

// newSMSSender 未配置密钥时退回到日志发送器
func newSMSSender(cfg *config.SMSConfig, log *zap.Logger) sms.Sender {
	if cfg.AccessKeyID == "" {
		return sms.NewLogSender(log.Named("sms"))
	}
	sender, err := sms.NewAliyunSender(&sms.Config{
		AccessKeyID:     cfg.AccessKeyID,
		AccessKeySecret: cfg.AccessKeySecret,
		SignName:        cfg.SignName,
		Endpoint:        cfg.Endpoint,
	})
	if err != nil {
		log.Warn("Failed to init sms client, using log sender", zap.Error(err))
		return sms.NewLogSender(log.Named("sms"))
	}
	return sender
}

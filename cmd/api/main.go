package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/worksync-dev/worksync/backend/internal/config"
	"github.com/worksync-dev/worksync/backend/internal/handler"
	"github.com/worksync-dev/worksync/backend/internal/mailqueue"
	"github.com/worksync-dev/worksync/backend/internal/repository"
	"github.com/worksync-dev/worksync/backend/internal/repository/memory"
	"github.com/worksync-dev/worksync/backend/internal/seed"
	"github.com/worksync-dev/worksync/backend/internal/session"
	"github.com/worksync-dev/worksync/backend/internal/telemetry"
	"github.com/worksync-dev/worksync/backend/migrations"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return
	}

	shutdownTracing := telemetry.Setup(context.Background(), cfg.OTEL.Endpoint, cfg.OTEL.Insecure, cfg.OTEL.ServiceName)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	/**********************************************
	 * 创建存储层
	 **********************************************/
	var deps handler.Dependencies
	var users seed.UserStore

	switch cfg.Database.Driver {
	case "memory":
		logger.Warn("使用内存存储，重启后数据会丢失")
		store := memory.New()
		users = store
		deps = handler.Dependencies{
			Users:           store,
			PasswordResets:  store,
			AttendanceStore: store,
			LeaveStore:      store,
		}
	default:
		dbpool, err := repository.Open(cfg)
		if err != nil {
			logger.Error("无法连接到数据库", "error", err)
			return
		}
		defer dbpool.Close()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.TransactionTimeout())
		err = migrations.Run(ctx, dbpool)
		cancel()
		if err != nil {
			logger.Error("数据库迁移失败", "error", err)
			return
		}

		repo := repository.NewRepository(cfg, dbpool)
		users = repo
		deps = handler.Dependencies{
			Users:           repo,
			PasswordResets:  repo,
			AttendanceStore: repo,
			LeaveStore:      repo,
		}
	}

	/**********************************************
	 * 确保存在初始管理员
	 **********************************************/
	if err := seed.EnsureInitialAdmin(context.Background(), users, cfg); err != nil {
		logger.Error("无法创建初始管理员", "error", err)
		return
	}

	/**********************************************
	 * 连接 rabbitmq
	 **********************************************/
	if cfg.RabbitMQ.DSN == "" {
		deps.Mailer = mailqueue.LogPublisher{Logger: logger}
	} else {
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			logger.Error("无法连接到 rabbitmq", "error", err)
			return
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			logger.Error("无法建立通道", "error", err)
			return
		}
		defer ch.Close()

		if _, err := mailqueue.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
			logger.Error("无法声明队列", "error", err)
			return
		}

		deps.Mailer = mailqueue.NewPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	}

	/**********************************************
	 * 连接 redis
	 **********************************************/
	if cfg.Redis.Host == "" {
		logger.Warn("未配置 redis，登出和角色变更不会使旧令牌失效")
		deps.Sessions = session.Nop{}
	} else {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			logger.Error("无法连接到 redis", "error", err)
			return
		}

		deps.Sessions = session.NewStore(rdb, time.Duration(cfg.Redis.OperationTimeout)*time.Second)
	}

	/**********************************************
	 * 创建 handler
	 **********************************************/
	h, err := handler.NewHandler(cfg, deps)
	if err != nil {
		logger.Error("无法创建 handler", "error", err)
		return
	}
	h.RegisterRoutes()

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      otelhttp.NewHandler(h.Mux, cfg.OTEL.ServiceName),
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("无法启动服务器", slog.String("error", err.Error()))
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	logger.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("关闭服务器失败", slog.String("error", err.Error()))
	}
	logger.Info("服务器已成功关闭")
}

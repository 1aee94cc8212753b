package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/worksync-dev/worksync/backend/internal/config"
	"github.com/worksync-dev/worksync/backend/internal/repository"
	"github.com/worksync-dev/worksync/backend/migrations"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := repository.Open(cfg)
	if err != nil {
		logger.Error("无法连接到数据库", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := migrations.Run(ctx, dbpool); err != nil {
		logger.Error("数据库迁移失败", "error", err)
		os.Exit(1)
	}
	logger.Info("数据库迁移完成")
}

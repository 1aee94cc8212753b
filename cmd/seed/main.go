package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/worksync-dev/worksync/backend/internal/config"
	"github.com/worksync-dev/worksync/backend/internal/repository"
	"github.com/worksync-dev/worksync/backend/internal/seed"
)

func main() {
	var op int
	var n int
	var days int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 插入历史考勤, 3: 插入随机请假申请)")
	flag.IntVar(&n, "n", 5, "要插入的员工数量")
	flag.IntVar(&days, "days", 14, "要生成考勤的天数")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.Database.Driver != "postgres" {
		logger.Error("seed 只支持 postgres", "driver", cfg.Database.Driver)
		os.Exit(1)
	}

	dbpool, err := repository.Open(cfg)
	if err != nil {
		logger.Error("无法连接到数据库", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	repo := repository.NewRepository(cfg, dbpool)
	ctx := context.Background()

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
			return
		}
		inserted := seed.Users(ctx, repo, n, cfg.Seed.User.Password, cfg.Email.UserDomain)
		slog.Info("插入员工成功", slog.Int("count", inserted))
	case 2:
		loc, err := cfg.AttendanceLocation()
		if err != nil {
			slog.Error("无法加载考勤时区", slog.String("error", err.Error()))
			return
		}
		inserted, err := seed.Attendance(ctx, repo, days, loc)
		if err != nil {
			slog.Error("无法插入考勤", slog.String("error", err.Error()))
		}
		slog.Info("插入考勤完成", slog.Int("count", inserted))
	case 3:
		inserted, err := seed.Leaves(ctx, repo)
		if err != nil {
			slog.Error("无法插入请假申请", slog.String("error", err.Error()))
		}
		slog.Info("插入请假申请完成", slog.Int("count", inserted))
	default:
		slog.Error("不支持的操作", slog.Int("op", op))
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ingest-console/internal/config"
	"ingest-console/internal/cronjob"
	"ingest-console/internal/handler"
	"ingest-console/internal/logger"
	"ingest-console/internal/model"

	"github.com/gin-gonic/gin"
)

var version = "1.0.0"

func main() {
	// 命令行参数
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	migrate := flag.Bool("migrate", false, "执行数据库迁移后退出")
	showVersion := flag.Bool("version", false, "打印版本号")
	flag.Parse()

	if *showVersion {
		fmt.Printf("ingest-console %s\n", version)
		return
	}

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger.InitLogger(logger.ParseLevel(cfg.Log.Level))

	// 初始化数据库
	if err := model.InitDB(&cfg.Database); err != nil {
		logger.Errorf("初始化数据库失败: %v", err)
		os.Exit(1)
	}
	logger.Info("数据库连接成功")

	if err := model.AutoMigrate(); err != nil {
		logger.Errorf("数据库迁移失败: %v", err)
		os.Exit(1)
	}

	if *migrate {
		logger.Info("数据库迁移完成")
		return
	}

	// 重启通道：system restart 接口通过它通知主进程退出
	shutdownChan := make(chan struct{}, 1)

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	handlers := handler.NewHandlers(cfg, version, shutdownChan)
	handler.SetupRouter(r, handlers, cfg.Server.Mode)

	// 启动定时任务
	cron := cronjob.NewCronJob()
	if cfg.Cron.Enabled {
		if err := cron.Start(cfg); err != nil {
			logger.Errorf("启动定时任务失败: %v", err)
			os.Exit(1)
		}
		defer cron.Stop()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		logger.Infof("服务器启动在 http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("服务器启动失败: %v", err)
			os.Exit(1)
		}
	}()

	// 等待退出信号或重启请求
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Infof("收到信号 %v，开始关闭", sig)
	case <-shutdownChan:
		logger.Info("收到重启请求，开始优雅关闭")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("强制关闭服务器: %v", err)
	}

	if sqlDB, err := model.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("服务已退出")
}

package model

import (
	"time"

	"ingest-console/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB 初始化数据库连接
func InitDB(cfg *config.DatabaseConfig) error {
	var logLevel logger.LogLevel
	if config.Get().Server.Mode == "debug" {
		logLevel = logger.Info
	} else {
		logLevel = logger.Silent
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	return nil
}

// AutoMigrate 自动迁移数据库表并写入默认设置
func AutoMigrate() error {
	if err := DB.AutoMigrate(
		&Tag{},
		&DataSource{},
		&RSSFeed{},
		&DatasetMapping{},
		&ArticleTag{},
		&WebhookConfig{},
		&WebhookHistory{},
		&Setting{},
	); err != nil {
		return err
	}

	return SeedSettings(DB)
}

// SeedSettings 初始化缺省设置项，已存在的键不覆盖
func SeedSettings(db *gorm.DB) error {
	defaults := []Setting{
		// 外部服务
		{Key: "ragflow_base_url", Value: "", ValueType: "string", Category: "api", Description: "RAGFlow API base URL"},
		{Key: "ragflow_api_key", Value: "", ValueType: "string", Category: "api", Description: "RAGFlow API key", IsSecret: true},
		{Key: "n8n_webhook_base_url", Value: "", ValueType: "string", Category: "api", Description: "n8n webhook base URL"},
		{Key: "n8n_api_key", Value: "", ValueType: "string", Category: "api", Description: "n8n API key", IsSecret: true},
		// 功能开关
		{Key: "feature_auto_parse", Value: "true", ValueType: "bool", Category: "feature", Description: "上传后自动解析文档"},
		{Key: "feature_url_dedup", Value: "true", ValueType: "bool", Category: "feature", Description: "上传前 URL 去重检查"},
		// 界面
		{Key: "ui_page_size", Value: "20", ValueType: "int", Category: "ui", Description: "默认分页大小"},
		{Key: "ui_theme", Value: "system", ValueType: "string", Category: "ui", Description: "界面主题 (light/dark/system)"},
	}

	for _, s := range defaults {
		var count int64
		db.Model(&Setting{}).Where("`key` = ?", s.Key).Count(&count)
		if count == 0 {
			if err := db.Create(&s).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	RagFlow  RagFlowConfig  `yaml:"ragflow"`
	N8N      N8NConfig      `yaml:"n8n"`
	Log      LogConfig      `yaml:"log"`
	Cron     CronConfig     `yaml:"cron"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // debug / release
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	Charset      string `yaml:"charset"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.Charset)
}

// RagFlowConfig 外部知识库 (RAGFlow) 接入配置
type RagFlowConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Timeout int    `yaml:"timeout"` // 秒
}

// N8NConfig 工作流引擎 (n8n) 接入配置
type N8NConfig struct {
	WebhookBaseURL string `yaml:"webhook_base_url"`
	APIBaseURL     string `yaml:"api_base_url"`
	APIKey         string `yaml:"api_key"`
	PollerWorkflow string `yaml:"poller_workflow"` // RSS 拉取工作流名称
}

type LogConfig struct {
	Level string `yaml:"level"` // debug / info / warn / error
}

type CronConfig struct {
	Enabled              bool `yaml:"enabled"`
	HistoryRetentionDays int  `yaml:"history_retention_days"`
}

var globalConfig *Config

// Load 加载配置文件，环境变量可覆盖敏感项
func Load(path string) (*Config, error) {
	// .env 文件不存在时继续使用系统环境变量
	_ = godotenv.Load()

	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 无配置文件时全部使用默认值 + 环境变量
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	globalConfig = &cfg
	return &cfg, nil
}

// Get 获取全局配置
func Get() *Config {
	return globalConfig
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 3306
	}
	if cfg.Database.Username == "" {
		cfg.Database.Username = "ingest"
	}
	if cfg.Database.Database == "" {
		cfg.Database.Database = "ingest_console"
	}
	if cfg.Database.Charset == "" {
		cfg.Database.Charset = "utf8mb4"
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 100
	}

	if cfg.RagFlow.BaseURL == "" {
		cfg.RagFlow.BaseURL = "http://ragflow:9380"
	}
	if cfg.RagFlow.Timeout == 0 {
		cfg.RagFlow.Timeout = 30
	}

	if cfg.N8N.WebhookBaseURL == "" {
		cfg.N8N.WebhookBaseURL = "http://n8n:5678"
	}
	if cfg.N8N.APIBaseURL == "" {
		cfg.N8N.APIBaseURL = "http://n8n:5678/api/v1"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Cron.HistoryRetentionDays == 0 {
		cfg.Cron.HistoryRetentionDays = 90
	}
}

// applyEnv 环境变量覆盖（密钥类配置不建议写入 yaml）
func applyEnv(cfg *Config) {
	if v := os.Getenv("INGEST_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("INGEST_RAGFLOW_API_KEY"); v != "" {
		cfg.RagFlow.APIKey = v
	}
	if v := os.Getenv("INGEST_N8N_API_KEY"); v != "" {
		cfg.N8N.APIKey = v
	}
}

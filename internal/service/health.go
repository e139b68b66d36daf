package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"ingest-console/internal/config"
	"ingest-console/internal/model"
)

const healthProbeTimeout = 5 * time.Second

// HealthService 健康检查服务
type HealthService struct {
	cfg     *config.Config
	version string
}

// NewHealthService 创建健康检查服务
func NewHealthService(cfg *config.Config, version string) *HealthService {
	return &HealthService{cfg: cfg, version: version}
}

// ServiceStatus 单个依赖服务状态
type ServiceStatus struct {
	Status    string `json:"status"` // up / down / unhealthy
	LatencyMs int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DetailedHealth 详细健康报告
type DetailedHealth struct {
	Status   string                   `json:"status"` // healthy / degraded
	Version  string                   `json:"version,omitempty"`
	Services map[string]ServiceStatus `json:"services"`
	Metrics  map[string]interface{}   `json:"metrics,omitempty"`
	System   map[string]interface{}   `json:"system,omitempty"`
}

// Check 存活探针，不访问任何依赖
func (s *HealthService) Check() map[string]string {
	return map[string]string{
		"status":  "healthy",
		"version": s.version,
	}
}

// Detailed 探测数据库与外部依赖，附带实体计数与主机资源
func (s *HealthService) Detailed() *DetailedHealth {
	services := map[string]ServiceStatus{
		"database": s.checkDatabase(),
		"ragflow":  s.checkHTTP(s.cfg.RagFlow.BaseURL + "/api/v1/datasets?page=1&limit=1"),
		"n8n":      s.checkHTTP(s.cfg.N8N.WebhookBaseURL + "/healthz"),
	}

	overall := "healthy"
	for _, svc := range services {
		if svc.Status != "up" {
			overall = "degraded"
			break
		}
	}

	return &DetailedHealth{
		Status:   overall,
		Version:  s.version,
		Services: services,
		Metrics:  s.entityCounts(),
		System:   systemStats(),
	}
}

func (s *HealthService) checkDatabase() ServiceStatus {
	start := time.Now()
	sqlDB, err := model.DB.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return ServiceStatus{Status: "down", LatencyMs: latency, Error: err.Error()}
	}
	return ServiceStatus{Status: "up", LatencyMs: latency}
}

func (s *HealthService) checkHTTP(url string) ServiceStatus {
	client := &http.Client{Timeout: healthProbeTimeout}

	start := time.Now()
	resp, err := client.Get(url)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return ServiceStatus{Status: "down", LatencyMs: latency, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		return ServiceStatus{Status: "up", LatencyMs: latency}
	}
	return ServiceStatus{Status: "unhealthy", LatencyMs: latency, Error: fmt.Sprintf("HTTP %d", resp.StatusCode)}
}

func (s *HealthService) entityCounts() map[string]interface{} {
	metrics := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	counts := map[string]interface{}{
		"tags":        &model.Tag{},
		"datasources": &model.DataSource{},
		"rss_feeds":   &model.RSSFeed{},
		"datasets":    &model.DatasetMapping{},
		"webhooks":    &model.WebhookConfig{},
	}
	for name, m := range counts {
		var count int64
		if err := model.DB.Model(m).Count(&count).Error; err == nil {
			metrics[name+"_count"] = count
		}
	}
	return metrics
}

func systemStats() map[string]interface{} {
	stats := make(map[string]interface{})

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats["mem_total"] = vm.Total
		stats["mem_used"] = vm.Used
		stats["mem_percent"] = vm.UsedPercent
	}
	return stats
}

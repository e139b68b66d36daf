package handler

import (
	"ingest-console/internal/pkg/response"
	"ingest-console/internal/service"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查
type HealthHandler struct {
	health *service.HealthService
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(health *service.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// Check 存活探针
func (h *HealthHandler) Check(c *gin.Context) {
	response.Success(c, h.health.Check())
}

// Detailed 详细健康报告，含依赖探测与实体计数
func (h *HealthHandler) Detailed(c *gin.Context) {
	response.Success(c, h.health.Detailed())
}

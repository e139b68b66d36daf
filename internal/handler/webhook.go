package handler

import (
	"encoding/json"
	"fmt"
	"strconv"

	"ingest-console/internal/model"
	"ingest-console/internal/pkg/response"
	"ingest-console/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

var allowedWebhookMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
}

// WebhookHandler Webhook 配置管理与触发
type WebhookHandler struct {
	webhookService *service.WebhookService
}

// NewWebhookHandler 创建 Webhook 处理器
func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// WebhookRequest 创建/更新 Webhook 请求
type WebhookRequest struct {
	Name           string         `json:"name" binding:"required"`
	URL            string         `json:"url" binding:"required,url"`
	Method         string         `json:"method"`
	ContentType    string         `json:"content_type"`
	Headers        datatypes.JSON `json:"headers"`
	BodyTemplate   string         `json:"body_template"`
	TimeoutSeconds int            `json:"timeout_seconds"`
	Description    string         `json:"description"`
	IsActive       *bool          `json:"is_active"`
}

func (r *WebhookRequest) validate() error {
	if r.Method != "" && !allowedWebhookMethods[r.Method] {
		return fmt.Errorf("method %q not allowed", r.Method)
	}
	if r.TimeoutSeconds != 0 && (r.TimeoutSeconds < model.MinWebhookTimeout || r.TimeoutSeconds > model.MaxWebhookTimeout) {
		return fmt.Errorf("timeout_seconds must be between %d and %d", model.MinWebhookTimeout, model.MaxWebhookTimeout)
	}
	if r.BodyTemplate != "" {
		var probe interface{}
		if err := json.Unmarshal([]byte(r.BodyTemplate), &probe); err != nil {
			return fmt.Errorf("body_template is not valid JSON: %v", err)
		}
	}
	return nil
}

// List 分页获取 Webhook 配置
func (h *WebhookHandler) List(c *gin.Context) {
	page, perPage := response.ParsePagination(c)

	query := model.DB.Model(&model.WebhookConfig{})
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.InternalError(c, "failed to count webhooks")
		return
	}

	var webhooks []model.WebhookConfig
	if err := query.Order("id").Offset((page - 1) * perPage).Limit(perPage).Find(&webhooks).Error; err != nil {
		response.InternalError(c, "failed to list webhooks")
		return
	}

	response.Page(c, webhooks, total, page, perPage)
}

// Get 获取单个 Webhook 配置
func (h *WebhookHandler) Get(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var webhook model.WebhookConfig
	if err := model.DB.First(&webhook, id).Error; err != nil {
		response.NotFound(c, "webhook not found")
		return
	}
	response.Success(c, webhook)
}

// Create 创建 Webhook 配置
func (h *WebhookHandler) Create(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	webhook := model.WebhookConfig{
		Name:           req.Name,
		URL:            req.URL,
		Method:         req.Method,
		ContentType:    req.ContentType,
		Headers:        req.Headers,
		BodyTemplate:   req.BodyTemplate,
		TimeoutSeconds: req.TimeoutSeconds,
		Description:    req.Description,
		IsActive:       true,
	}
	if webhook.Method == "" {
		webhook.Method = model.DefaultWebhookMethod
	}
	if webhook.ContentType == "" {
		webhook.ContentType = model.DefaultWebhookContentType
	}
	if webhook.TimeoutSeconds == 0 {
		webhook.TimeoutSeconds = model.DefaultWebhookTimeout
	}
	if req.IsActive != nil {
		webhook.IsActive = *req.IsActive
	}

	if err := model.DB.Create(&webhook).Error; err != nil {
		response.InternalError(c, "failed to create webhook")
		return
	}
	response.Created(c, webhook)
}

// Update 更新 Webhook 配置
func (h *WebhookHandler) Update(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var webhook model.WebhookConfig
	if err := model.DB.First(&webhook, id).Error; err != nil {
		response.NotFound(c, "webhook not found")
		return
	}

	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := req.validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	webhook.Name = req.Name
	webhook.URL = req.URL
	webhook.Description = req.Description
	webhook.BodyTemplate = req.BodyTemplate
	if req.Method != "" {
		webhook.Method = req.Method
	}
	if req.ContentType != "" {
		webhook.ContentType = req.ContentType
	}
	if req.Headers != nil {
		webhook.Headers = req.Headers
	}
	if req.TimeoutSeconds != 0 {
		webhook.TimeoutSeconds = req.TimeoutSeconds
	}
	if req.IsActive != nil {
		webhook.IsActive = *req.IsActive
	}

	if err := model.DB.Save(&webhook).Error; err != nil {
		response.InternalError(c, "failed to update webhook")
		return
	}
	response.Success(c, webhook)
}

// Delete 删除 Webhook 配置，触发历史一并删除
func (h *WebhookHandler) Delete(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var webhook model.WebhookConfig
	if err := model.DB.First(&webhook, id).Error; err != nil {
		response.NotFound(c, "webhook not found")
		return
	}

	if err := model.DB.Where("webhook_id = ?", id).Delete(&model.WebhookHistory{}).Error; err != nil {
		response.InternalError(c, "failed to delete webhook history")
		return
	}
	if err := model.DB.Delete(&webhook).Error; err != nil {
		response.InternalError(c, "failed to delete webhook")
		return
	}
	response.Deleted(c)
}

// TriggerRequest 手动触发请求
type TriggerRequest struct {
	Payload   map[string]interface{} `json:"payload"`
	Variables map[string]string      `json:"variables"`
}

// Trigger 触发 Webhook，失败同样返回触发记录
func (h *WebhookHandler) Trigger(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var req TriggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request: "+err.Error())
			return
		}
	}

	history, err := h.webhookService.Trigger(id, req.Payload, req.Variables)
	if err != nil {
		if history != nil {
			// 投递失败：历史已落库，随错误一起返回
			c.JSON(502, gin.H{"error": err.Error(), "data": history})
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, history)
}

// History 获取触发历史，最新在前，支持按状态筛选
func (h *WebhookHandler) History(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var webhook model.WebhookConfig
	if err := model.DB.First(&webhook, id).Error; err != nil {
		response.NotFound(c, "webhook not found")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	status := c.Query("status")

	history, err := h.webhookService.History(id, status, limit)
	if err != nil {
		response.InternalError(c, "failed to list webhook history")
		return
	}
	response.Success(c, history)
}

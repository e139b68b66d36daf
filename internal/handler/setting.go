package handler

import (
	"errors"

	"ingest-console/internal/model"
	"ingest-console/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SettingHandler 运行时设置管理
type SettingHandler struct{}

// NewSettingHandler 创建设置处理器
func NewSettingHandler() *SettingHandler {
	return &SettingHandler{}
}

// List 获取设置列表，密钥类设置脱敏，支持按分类筛选
func (h *SettingHandler) List(c *gin.Context) {
	query := model.DB.Model(&model.Setting{})
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var settings []model.Setting
	if err := query.Order("category, `key`").Find(&settings).Error; err != nil {
		response.InternalError(c, "failed to list settings")
		return
	}

	masked := make([]model.Setting, len(settings))
	for i, s := range settings {
		masked[i] = s.Masked()
	}
	response.Success(c, masked)
}

// Get 获取单个设置，密钥类设置脱敏
func (h *SettingHandler) Get(c *gin.Context) {
	key := c.Param("key")

	var setting model.Setting
	if err := model.DB.Where("`key` = ?", key).First(&setting).Error; err != nil {
		response.NotFound(c, "setting not found")
		return
	}
	response.Success(c, setting.Masked())
}

// SettingRequest 更新设置请求
type SettingRequest struct {
	Value       string `json:"value"`
	ValueType   string `json:"value_type"`
	Category    string `json:"category"`
	Description string `json:"description"`
	IsSecret    *bool  `json:"is_secret"`
}

// Update 更新设置，键不存在时创建
func (h *SettingHandler) Update(c *gin.Context) {
	key := c.Param("key")

	var req SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var setting model.Setting
	err := model.DB.Where("`key` = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = model.Setting{
			Key:         key,
			Value:       req.Value,
			ValueType:   req.ValueType,
			Category:    req.Category,
			Description: req.Description,
		}
		if setting.ValueType == "" {
			setting.ValueType = "string"
		}
		if req.IsSecret != nil {
			setting.IsSecret = *req.IsSecret
		}
		if err := model.DB.Create(&setting).Error; err != nil {
			response.InternalError(c, "failed to create setting")
			return
		}
		response.Created(c, setting.Masked())
		return
	}
	if err != nil {
		response.InternalError(c, "failed to load setting")
		return
	}

	setting.Value = req.Value
	if req.ValueType != "" {
		setting.ValueType = req.ValueType
	}
	if req.Category != "" {
		setting.Category = req.Category
	}
	if req.Description != "" {
		setting.Description = req.Description
	}
	if req.IsSecret != nil {
		setting.IsSecret = *req.IsSecret
	}

	if err := model.DB.Save(&setting).Error; err != nil {
		response.InternalError(c, "failed to update setting")
		return
	}
	response.Success(c, setting.Masked())
}

package handler

import (
	"ingest-console/internal/model"
	"ingest-console/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// DataSourceHandler 数据源管理
type DataSourceHandler struct{}

// NewDataSourceHandler 创建数据源处理器
func NewDataSourceHandler() *DataSourceHandler {
	return &DataSourceHandler{}
}

// DataSourceRequest 创建/更新数据源请求
type DataSourceRequest struct {
	Name        string         `json:"name" binding:"required"`
	URL         string         `json:"url" binding:"required,url"`
	Type        string         `json:"type"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	IsActive    *bool          `json:"is_active"`
	Metadata    datatypes.JSON `json:"metadata"`
	TagIDs      []uint         `json:"tag_ids"`
}

// List 分页获取数据源，支持按分类/状态筛选和名称搜索
func (h *DataSourceHandler) List(c *gin.Context) {
	page, perPage := response.ParsePagination(c)

	query := model.DB.Model(&model.DataSource{})
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.InternalError(c, "failed to count data sources")
		return
	}

	var sources []model.DataSource
	if err := query.Preload("Tags").Order("id").Offset((page - 1) * perPage).Limit(perPage).Find(&sources).Error; err != nil {
		response.InternalError(c, "failed to list data sources")
		return
	}

	response.Page(c, sources, total, page, perPage)
}

// Get 获取单个数据源
func (h *DataSourceHandler) Get(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var source model.DataSource
	if err := model.DB.Preload("Tags").First(&source, id).Error; err != nil {
		response.NotFound(c, "data source not found")
		return
	}
	response.Success(c, source)
}

// Create 创建数据源
func (h *DataSourceHandler) Create(c *gin.Context) {
	var req DataSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	source := model.DataSource{
		Name:        req.Name,
		URL:         req.URL,
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		IsActive:    true,
		Metadata:    req.Metadata,
	}
	if source.Type == "" {
		source.Type = "website"
	}
	if req.IsActive != nil {
		source.IsActive = *req.IsActive
	}

	if err := model.DB.Create(&source).Error; err != nil {
		response.InternalError(c, "failed to create data source")
		return
	}

	if len(req.TagIDs) > 0 {
		if ok := replaceTags(c, &source, req.TagIDs); !ok {
			return
		}
	}

	model.DB.Preload("Tags").First(&source, source.ID)
	response.Created(c, source)
}

// Update 更新数据源
func (h *DataSourceHandler) Update(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var source model.DataSource
	if err := model.DB.First(&source, id).Error; err != nil {
		response.NotFound(c, "data source not found")
		return
	}

	var req DataSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	source.Name = req.Name
	source.URL = req.URL
	source.Category = req.Category
	source.Description = req.Description
	if req.Type != "" {
		source.Type = req.Type
	}
	if req.IsActive != nil {
		source.IsActive = *req.IsActive
	}
	if req.Metadata != nil {
		source.Metadata = req.Metadata
	}

	if err := model.DB.Save(&source).Error; err != nil {
		response.InternalError(c, "failed to update data source")
		return
	}

	if req.TagIDs != nil {
		if ok := replaceTags(c, &source, req.TagIDs); !ok {
			return
		}
	}

	model.DB.Preload("Tags").First(&source, source.ID)
	response.Success(c, source)
}

// Delete 删除数据源
func (h *DataSourceHandler) Delete(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var source model.DataSource
	if err := model.DB.First(&source, id).Error; err != nil {
		response.NotFound(c, "data source not found")
		return
	}

	if err := model.DB.Select("Tags").Delete(&source).Error; err != nil {
		response.InternalError(c, "failed to delete data source")
		return
	}
	response.Deleted(c)
}

// replaceTags 按 ID 列表替换资源的标签关联，失败时已写出错误响应
func replaceTags(c *gin.Context, entity interface{}, tagIDs []uint) bool {
	var tags []model.Tag
	if len(tagIDs) > 0 {
		if err := model.DB.Find(&tags, tagIDs).Error; err != nil {
			response.InternalError(c, "failed to load tags")
			return false
		}
		if len(tags) != len(tagIDs) {
			response.BadRequest(c, "one or more tag ids do not exist")
			return false
		}
	}
	if err := model.DB.Model(entity).Association("Tags").Replace(tags); err != nil {
		response.InternalError(c, "failed to update tag associations")
		return false
	}
	return true
}

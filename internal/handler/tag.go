package handler

import (
	"errors"

	"ingest-console/internal/model"
	"ingest-console/internal/pkg/response"
	"ingest-console/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TagHandler 标签管理
type TagHandler struct {
	tagService *service.TagService
}

// NewTagHandler 创建标签处理器
func NewTagHandler(tagService *service.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// TagRequest 创建/更新标签请求
type TagRequest struct {
	Name        string `json:"name" binding:"required"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// List 分页获取标签，支持按名称搜索
func (h *TagHandler) List(c *gin.Context) {
	page, perPage := response.ParsePagination(c)
	search := c.Query("search")

	query := model.DB.Model(&model.Tag{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.InternalError(c, "failed to count tags")
		return
	}

	var tags []model.Tag
	if err := query.Order("id").Offset((page - 1) * perPage).Limit(perPage).Find(&tags).Error; err != nil {
		response.InternalError(c, "failed to list tags")
		return
	}

	response.Page(c, tags, total, page, perPage)
}

// GetAll 获取全部标签，不分页，供下拉选择使用
func (h *TagHandler) GetAll(c *gin.Context) {
	var tags []model.Tag
	if err := model.DB.Order("name").Find(&tags).Error; err != nil {
		response.InternalError(c, "failed to list tags")
		return
	}
	response.Success(c, tags)
}

// Get 获取单个标签
func (h *TagHandler) Get(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var tag model.Tag
	if err := model.DB.First(&tag, id).Error; err != nil {
		response.NotFound(c, "tag not found")
		return
	}
	response.Success(c, tag)
}

// Create 创建标签，重名返回 409
func (h *TagHandler) Create(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var existing model.Tag
	if err := model.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		response.Conflict(c, "tag name already exists")
		return
	}

	tag := model.Tag{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	}
	if tag.Color == "" {
		tag.Color = model.DefaultTagColor
	}

	if err := model.DB.Create(&tag).Error; err != nil {
		response.InternalError(c, "failed to create tag")
		return
	}
	response.Created(c, tag)
}

// Update 更新标签
func (h *TagHandler) Update(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var tag model.Tag
	if err := model.DB.First(&tag, id).Error; err != nil {
		response.NotFound(c, "tag not found")
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	// 改名时检查重名
	if req.Name != tag.Name {
		var existing model.Tag
		if err := model.DB.Where("name = ? AND id <> ?", req.Name, id).First(&existing).Error; err == nil {
			response.Conflict(c, "tag name already exists")
			return
		}
	}

	tag.Name = req.Name
	tag.Description = req.Description
	if req.Color != "" {
		tag.Color = req.Color
	}

	if err := model.DB.Save(&tag).Error; err != nil {
		response.InternalError(c, "failed to update tag")
		return
	}
	response.Success(c, tag)
}

// Delete 删除标签，仍被引用时返回 409
func (h *TagHandler) Delete(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var tag model.Tag
	if err := model.DB.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "tag not found")
			return
		}
		response.InternalError(c, "failed to load tag")
		return
	}

	if err := h.tagService.Delete(id); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c)
}

// namesRequest 批量名称请求
type namesRequest struct {
	Names []string `json:"names" binding:"required"`
}

// BatchGetOrCreate 按名称批量获取标签，缺失的即时创建
func (h *TagHandler) BatchGetOrCreate(c *gin.Context) {
	var req namesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	tags, err := h.tagService.GetOrCreateByNames(req.Names)
	if err != nil {
		response.InternalError(c, "failed to resolve tags")
		return
	}
	response.Success(c, tags)
}

// GetByNames 按名称批量获取已有标签
func (h *TagHandler) GetByNames(c *gin.Context) {
	var req namesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	tags, err := h.tagService.GetByNames(req.Names)
	if err != nil {
		response.InternalError(c, "failed to resolve tags")
		return
	}
	response.Success(c, tags)
}

// Match 按关键字模糊匹配标签
func (h *TagHandler) Match(c *gin.Context) {
	var req struct {
		Keywords []string `json:"keywords" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	tags, err := h.tagService.MatchByKeywords(req.Keywords)
	if err != nil {
		response.InternalError(c, "failed to match tags")
		return
	}
	response.Success(c, tags)
}

package handler

import (
	"errors"

	"ingest-console/internal/model"
	"ingest-console/internal/pkg/response"
	"ingest-console/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatasetHandler 数据集映射管理
type DatasetHandler struct {
	routing *service.RoutingService
}

// NewDatasetHandler 创建数据集映射处理器
func NewDatasetHandler(routing *service.RoutingService) *DatasetHandler {
	return &DatasetHandler{routing: routing}
}

// DatasetRequest 创建/更新数据集映射请求
type DatasetRequest struct {
	Name        string         `json:"name" binding:"required"`
	DisplayName string         `json:"display_name"`
	DatasetID   string         `json:"dataset_id" binding:"required"`
	Description string         `json:"description"`
	ParserID    string         `json:"parser_id"`
	IsDefault   *bool          `json:"is_default"`
	IsActive    *bool          `json:"is_active"`
	Metadata    datatypes.JSON `json:"metadata"`
	TagIDs      []uint         `json:"tag_ids"`
}

// List 分页获取数据集映射
func (h *DatasetHandler) List(c *gin.Context) {
	page, perPage := response.ParsePagination(c)

	query := model.DB.Model(&model.DatasetMapping{})
	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		response.InternalError(c, "failed to count dataset mappings")
		return
	}

	var mappings []model.DatasetMapping
	if err := query.Preload("Tags").Order("id").Offset((page - 1) * perPage).Limit(perPage).Find(&mappings).Error; err != nil {
		response.InternalError(c, "failed to list dataset mappings")
		return
	}

	response.Page(c, mappings, total, page, perPage)
}

// GetAll 获取全部映射，不分页
func (h *DatasetHandler) GetAll(c *gin.Context) {
	var mappings []model.DatasetMapping
	if err := model.DB.Preload("Tags").Order("id").Find(&mappings).Error; err != nil {
		response.InternalError(c, "failed to list dataset mappings")
		return
	}
	response.Success(c, mappings)
}

// Get 获取单个映射
func (h *DatasetHandler) Get(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var mapping model.DatasetMapping
	if err := model.DB.Preload("Tags").First(&mapping, id).Error; err != nil {
		response.NotFound(c, "dataset mapping not found")
		return
	}
	response.Success(c, mapping)
}

// GetByName 按名称获取映射
func (h *DatasetHandler) GetByName(c *gin.Context) {
	name := c.Param("name")

	var mapping model.DatasetMapping
	if err := model.DB.Preload("Tags").Where("name = ?", name).First(&mapping).Error; err != nil {
		response.NotFound(c, "dataset mapping not found")
		return
	}
	response.Success(c, mapping)
}

// Create 创建映射，重名返回 409。设为默认时清掉其他默认标记。
func (h *DatasetHandler) Create(c *gin.Context) {
	var req DatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var existing model.DatasetMapping
	if err := model.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		response.Conflict(c, "dataset mapping name already exists")
		return
	}

	mapping := model.DatasetMapping{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		DatasetID:   req.DatasetID,
		Description: req.Description,
		ParserID:    req.ParserID,
		IsActive:    true,
		Metadata:    req.Metadata,
	}
	if mapping.ParserID == "" {
		mapping.ParserID = model.DefaultParserID
	}
	if req.IsDefault != nil {
		mapping.IsDefault = *req.IsDefault
	}
	if req.IsActive != nil {
		mapping.IsActive = *req.IsActive
	}

	err := model.DB.Transaction(func(tx *gorm.DB) error {
		if mapping.IsDefault {
			if err := tx.Model(&model.DatasetMapping{}).Where("is_default = ?", true).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&mapping).Error
	})
	if err != nil {
		response.InternalError(c, "failed to create dataset mapping")
		return
	}

	if len(req.TagIDs) > 0 {
		if ok := replaceTags(c, &mapping, req.TagIDs); !ok {
			return
		}
	}

	model.DB.Preload("Tags").First(&mapping, mapping.ID)
	response.Created(c, mapping)
}

// Update 更新映射，同样保证默认映射唯一
func (h *DatasetHandler) Update(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var mapping model.DatasetMapping
	if err := model.DB.First(&mapping, id).Error; err != nil {
		response.NotFound(c, "dataset mapping not found")
		return
	}

	var req DatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if req.Name != mapping.Name {
		var existing model.DatasetMapping
		if err := model.DB.Where("name = ? AND id <> ?", req.Name, id).First(&existing).Error; err == nil {
			response.Conflict(c, "dataset mapping name already exists")
			return
		}
	}

	mapping.Name = req.Name
	mapping.DisplayName = req.DisplayName
	mapping.DatasetID = req.DatasetID
	mapping.Description = req.Description
	if req.ParserID != "" {
		mapping.ParserID = req.ParserID
	}
	if req.IsDefault != nil {
		mapping.IsDefault = *req.IsDefault
	}
	if req.IsActive != nil {
		mapping.IsActive = *req.IsActive
	}
	if req.Metadata != nil {
		mapping.Metadata = req.Metadata
	}

	err := model.DB.Transaction(func(tx *gorm.DB) error {
		if mapping.IsDefault {
			if err := tx.Model(&model.DatasetMapping{}).Where("is_default = ? AND id <> ?", true, id).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(&mapping).Error
	})
	if err != nil {
		response.InternalError(c, "failed to update dataset mapping")
		return
	}

	if req.TagIDs != nil {
		if ok := replaceTags(c, &mapping, req.TagIDs); !ok {
			return
		}
	}

	model.DB.Preload("Tags").First(&mapping, mapping.ID)
	response.Success(c, mapping)
}

// Delete 删除映射
func (h *DatasetHandler) Delete(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var mapping model.DatasetMapping
	if err := model.DB.First(&mapping, id).Error; err != nil {
		response.NotFound(c, "dataset mapping not found")
		return
	}

	if err := model.DB.Select("Tags").Delete(&mapping).Error; err != nil {
		response.InternalError(c, "failed to delete dataset mapping")
		return
	}
	response.Deleted(c)
}

// RecommendByTag 按标签/分类推荐数据集映射，不落库
func (h *DatasetHandler) RecommendByTag(c *gin.Context) {
	var req struct {
		TagNames []string `json:"tag_names"`
		Category string   `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	result, _, err := h.routing.ResolveForDocument(req.TagNames, req.Category, false)
	if err != nil {
		if errors.Is(err, service.ErrNoDefaultDataset) {
			response.Error(c, service.ErrNoDefaultDataset)
			return
		}
		response.InternalError(c, "failed to resolve dataset")
		return
	}

	response.Success(c, gin.H{
		"mapping":  result.Mapping,
		"rule":     result.Rule,
		"warnings": result.Warnings,
	})
}

// AddArticleTags 记录文档-标签关联
func (h *DatasetHandler) AddArticleTags(c *gin.Context) {
	var req struct {
		DocumentID   string `json:"document_id" binding:"required"`
		DatasetID    string `json:"dataset_id" binding:"required"`
		TagIDs       []uint `json:"tag_ids" binding:"required"`
		ArticleTitle string `json:"article_title"`
		ArticleURL   string `json:"article_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	records := make([]model.ArticleTag, 0, len(req.TagIDs))
	for _, tagID := range req.TagIDs {
		records = append(records, model.ArticleTag{
			DocumentID:   req.DocumentID,
			DatasetID:    req.DatasetID,
			TagID:        tagID,
			ArticleTitle: req.ArticleTitle,
			ArticleURL:   req.ArticleURL,
		})
	}
	if err := model.DB.Create(&records).Error; err != nil {
		response.InternalError(c, "failed to create article tags")
		return
	}
	response.Created(c, records)
}

// GetArticleTags 获取文档的标签关联
func (h *DatasetHandler) GetArticleTags(c *gin.Context) {
	docID := c.Param("document_id")

	var records []model.ArticleTag
	if err := model.DB.Preload("Tag").Where("document_id = ?", docID).Find(&records).Error; err != nil {
		response.InternalError(c, "failed to list article tags")
		return
	}
	response.Success(c, records)
}

// GetArticlesByTag 按标签反查文档
func (h *DatasetHandler) GetArticlesByTag(c *gin.Context) {
	tagID, ok := response.ParseID(c, "tag_id")
	if !ok {
		return
	}

	var records []model.ArticleTag
	if err := model.DB.Where("tag_id = ?", tagID).Order("created_at DESC").Find(&records).Error; err != nil {
		response.InternalError(c, "failed to list articles")
		return
	}
	response.Success(c, records)
}

package handler

import (
	"fmt"
	"time"

	"ingest-console/internal/model"
	"ingest-console/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

// RSSHandler RSS 订阅源管理
type RSSHandler struct{}

// NewRSSHandler 创建 RSS 处理器
func NewRSSHandler() *RSSHandler {
	return &RSSHandler{}
}

// RSSRequest 创建/更新 RSS 源请求
type RSSRequest struct {
	Name                 string         `json:"name" binding:"required"`
	URL                  string         `json:"url" binding:"required,url"`
	Category             string         `json:"category"`
	Description          string         `json:"description"`
	IsActive             *bool          `json:"is_active"`
	FetchIntervalMinutes int            `json:"fetch_interval_minutes"`
	Metadata             datatypes.JSON `json:"metadata"`
	TagIDs               []uint         `json:"tag_ids"`
}

func validateFetchInterval(minutes int) error {
	if minutes != 0 && minutes < model.MinFetchIntervalMinutes {
		return fmt.Errorf("fetch_interval_minutes must be at least %d", model.MinFetchIntervalMinutes)
	}
	return nil
}

// List 分页获取 RSS 源
func (h *RSSHandler) List(c *gin.Context) {
	page, perPage := response.ParsePagination(c)

	query := model.DB.Model(&model.RSSFeed{})
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
		response.InternalError(c, "failed to count rss feeds")
		return
	}

	var feeds []model.RSSFeed
	if err := query.Preload("Tags").Order("id").Offset((page - 1) * perPage).Limit(perPage).Find(&feeds).Error; err != nil {
		response.InternalError(c, "failed to list rss feeds")
		return
	}

	response.Page(c, feeds, total, page, perPage)
}

// Get 获取单个 RSS 源
func (h *RSSHandler) Get(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var feed model.RSSFeed
	if err := model.DB.Preload("Tags").First(&feed, id).Error; err != nil {
		response.NotFound(c, "rss feed not found")
		return
	}
	response.Success(c, feed)
}

// Create 创建 RSS 源，URL 重复返回 409
func (h *RSSHandler) Create(c *gin.Context) {
	var req RSSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := validateFetchInterval(req.FetchIntervalMinutes); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var existing model.RSSFeed
	if err := model.DB.Where("url = ?", req.URL).First(&existing).Error; err == nil {
		response.Conflict(c, "rss feed url already exists")
		return
	}

	feed := model.RSSFeed{
		Name:                 req.Name,
		URL:                  req.URL,
		Category:             req.Category,
		Description:          req.Description,
		IsActive:             true,
		FetchIntervalMinutes: req.FetchIntervalMinutes,
		Metadata:             req.Metadata,
	}
	if feed.FetchIntervalMinutes == 0 {
		feed.FetchIntervalMinutes = model.DefaultFetchIntervalMinutes
	}
	if req.IsActive != nil {
		feed.IsActive = *req.IsActive
	}

	if err := model.DB.Create(&feed).Error; err != nil {
		response.InternalError(c, "failed to create rss feed")
		return
	}

	if len(req.TagIDs) > 0 {
		if ok := replaceTags(c, &feed, req.TagIDs); !ok {
			return
		}
	}

	model.DB.Preload("Tags").First(&feed, feed.ID)
	response.Created(c, feed)
}

// Update 更新 RSS 源
func (h *RSSHandler) Update(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var feed model.RSSFeed
	if err := model.DB.First(&feed, id).Error; err != nil {
		response.NotFound(c, "rss feed not found")
		return
	}

	var req RSSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := validateFetchInterval(req.FetchIntervalMinutes); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if req.URL != feed.URL {
		var existing model.RSSFeed
		if err := model.DB.Where("url = ? AND id <> ?", req.URL, id).First(&existing).Error; err == nil {
			response.Conflict(c, "rss feed url already exists")
			return
		}
	}

	feed.Name = req.Name
	feed.URL = req.URL
	feed.Category = req.Category
	feed.Description = req.Description
	if req.FetchIntervalMinutes != 0 {
		feed.FetchIntervalMinutes = req.FetchIntervalMinutes
	}
	if req.IsActive != nil {
		feed.IsActive = *req.IsActive
	}
	if req.Metadata != nil {
		feed.Metadata = req.Metadata
	}

	if err := model.DB.Save(&feed).Error; err != nil {
		response.InternalError(c, "failed to update rss feed")
		return
	}

	if req.TagIDs != nil {
		if ok := replaceTags(c, &feed, req.TagIDs); !ok {
			return
		}
	}

	model.DB.Preload("Tags").First(&feed, feed.ID)
	response.Success(c, feed)
}

// Delete 删除 RSS 源
func (h *RSSHandler) Delete(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var feed model.RSSFeed
	if err := model.DB.First(&feed, id).Error; err != nil {
		response.NotFound(c, "rss feed not found")
		return
	}

	if err := model.DB.Select("Tags").Delete(&feed).Error; err != nil {
		response.InternalError(c, "failed to delete rss feed")
		return
	}
	response.Deleted(c)
}

// MarkFetched 更新最近拉取时间，供外部轮询器回写
func (h *RSSHandler) MarkFetched(c *gin.Context) {
	id, ok := response.ParseID(c, "id")
	if !ok {
		return
	}

	var feed model.RSSFeed
	if err := model.DB.First(&feed, id).Error; err != nil {
		response.NotFound(c, "rss feed not found")
		return
	}

	now := time.Now()
	feed.LastFetchedAt = &now
	if err := model.DB.Save(&feed).Error; err != nil {
		response.InternalError(c, "failed to update rss feed")
		return
	}
	response.Success(c, feed)
}

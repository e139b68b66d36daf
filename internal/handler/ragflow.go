package handler

import (
	"strconv"

	"ingest-console/internal/pkg/response"
	"ingest-console/internal/service"

	"github.com/gin-gonic/gin"
)

// RagFlowHandler 知识库文档接入
type RagFlowHandler struct {
	ragflow *service.RagFlowService
}

// NewRagFlowHandler 创建 RAGFlow 处理器
func NewRagFlowHandler(ragflow *service.RagFlowService) *RagFlowHandler {
	return &RagFlowHandler{ragflow: ragflow}
}

// Upload 上传文档到指定或默认数据集
func (h *RagFlowHandler) Upload(c *gin.Context) {
	var req service.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	resp, err := h.ragflow.Upload(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// UploadWithRouting 按标签/分类路由后上传
func (h *RagFlowHandler) UploadWithRouting(c *gin.Context) {
	var req service.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	resp, result, err := h.ragflow.UploadWithRouting(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"response":   resp,
		"dataset_id": result.Mapping.DatasetID,
		"rule":       result.Rule,
		"warnings":   result.Warnings,
	})
}

// CheckURL URL 查重，normalize=true 时做归一化匹配
func (h *RagFlowHandler) CheckURL(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		response.BadRequest(c, "url is required")
		return
	}
	normalize := c.DefaultQuery("normalize", "true") == "true"

	result, err := h.ragflow.CheckURLEnhanced(url, normalize)
	if err != nil {
		response.InternalError(c, "failed to check url")
		return
	}
	response.Success(c, result)
}

// ListDocuments 列出数据集内文档
func (h *RagFlowHandler) ListDocuments(c *gin.Context) {
	datasetID := c.Query("dataset_id")
	if datasetID == "" {
		response.BadRequest(c, "dataset_id is required")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.ragflow.ListDocuments(datasetID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteDocument 删除文档
func (h *RagFlowHandler) DeleteDocument(c *gin.Context) {
	datasetID := c.Query("dataset_id")
	if datasetID == "" {
		response.BadRequest(c, "dataset_id is required")
		return
	}
	documentID := c.Param("id")

	if err := h.ragflow.DeleteDocument(datasetID, documentID); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c)
}

// ListDatasets 列出知识库数据集
func (h *RagFlowHandler) ListDatasets(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.ragflow.ListDatasets(page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// BatchUploadRequest 批量上传请求
type BatchUploadRequest struct {
	DatasetID string                  `json:"dataset_id" binding:"required"`
	Documents []service.UploadRequest `json:"documents" binding:"required,min=1"`
}

// BatchUpload 批量上传，单条失败不中止
func (h *RagFlowHandler) BatchUpload(c *gin.Context) {
	var req BatchUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	results, failed := h.ragflow.BatchUpload(req.DatasetID, req.Documents)
	response.Success(c, gin.H{
		"total":   len(req.Documents),
		"failed":  failed,
		"results": results,
	})
}

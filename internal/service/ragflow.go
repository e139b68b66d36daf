package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ingest-console/internal/config"
	"ingest-console/internal/logger"
	"ingest-console/internal/model"
	"ingest-console/internal/pkg/apperr"
	"ingest-console/internal/pkg/urlutil"
)

// RagFlowService 知识库 (RAGFlow) 文档接入服务
type RagFlowService struct {
	cfg     config.RagFlowConfig
	routing *RoutingService
	client  *http.Client
}

// NewRagFlowService 创建 RAGFlow 服务
func NewRagFlowService(cfg config.RagFlowConfig, routing *RoutingService) *RagFlowService {
	return &RagFlowService{
		cfg:     cfg,
		routing: routing,
		client:  &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
	}
}

// UploadRequest 文档上传请求
type UploadRequest struct {
	Content        string   `json:"content" binding:"required"`
	Filename       string   `json:"filename" binding:"required"`
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	Tags           []string `json:"tags"`
	Category       string   `json:"category"`
	DatasetID      string   `json:"dataset_id"`
	AutoCreateTags bool     `json:"auto_create_tags"`
}

// UploadResponse RAGFlow 上传响应
type UploadResponse struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

// Upload 上传文档。未指定 dataset_id 时使用默认数据集
func (s *RagFlowService) Upload(req *UploadRequest) (*UploadResponse, error) {
	datasetID := req.DatasetID
	if datasetID == "" {
		snap, err := s.routing.LoadSnapshot()
		if err != nil {
			return nil, err
		}
		result, err := Resolve(snap, nil, "")
		if err != nil {
			return nil, err
		}
		datasetID = result.Mapping.DatasetID
	}

	return s.uploadDocument(datasetID, req.Filename, req.Content)
}

// UploadWithRouting 按标签/分类路由后上传，返回响应、命中的数据集与路由规则
func (s *RagFlowService) UploadWithRouting(req *UploadRequest) (*UploadResponse, *RoutingResult, error) {
	result, tags, err := s.routing.ResolveForDocument(req.Tags, req.Category, req.AutoCreateTags)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range result.Warnings {
		logger.Warningf("routing: %s", w)
	}

	resp, err := s.uploadDocument(result.Mapping.DatasetID, req.Filename, req.Content)
	if err != nil {
		return nil, result, err
	}

	// 记录文档-标签关联，失败只记日志不影响上传结果
	if resp.Code == 0 && resp.Data != nil {
		if docID, ok := resp.Data["id"].(string); ok {
			s.recordArticleTags(docID, result.Mapping.DatasetID, tags, req)
		}
	}

	return resp, result, nil
}

func (s *RagFlowService) recordArticleTags(docID, datasetID string, tags []model.Tag, req *UploadRequest) {
	for _, tag := range tags {
		at := model.ArticleTag{
			DocumentID:   docID,
			DatasetID:    datasetID,
			TagID:        tag.ID,
			ArticleTitle: req.Title,
			ArticleURL:   req.URL,
		}
		if err := model.DB.Create(&at).Error; err != nil {
			logger.Warningf("failed to record article tag %q for document %s: %v", tag.Name, docID, err)
		}
	}
}

// CheckURL 检查 URL 是否已入库
func (s *RagFlowService) CheckURL(url string) (bool, error) {
	var count int64
	if err := model.DB.Model(&model.ArticleTag{}).Where("article_url = ?", url).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// URLCheckResult URL 查重结果
type URLCheckResult struct {
	Exists     bool   `json:"exists"`
	DocumentID string `json:"document_id,omitempty"`
	DatasetID  string `json:"dataset_id,omitempty"`
	Title      string `json:"title,omitempty"`
	StoredURL  string `json:"stored_url,omitempty"`
	MatchType  string `json:"match_type,omitempty"` // exact / normalized
}

// CheckURLEnhanced URL 查重。先精确匹配，normalize 为 true 时再做
// 归一化匹配（忽略跟踪参数、大小写主机名与末尾斜杠差异）。
func (s *RagFlowService) CheckURLEnhanced(rawURL string, normalize bool) (*URLCheckResult, error) {
	var exact model.ArticleTag
	err := model.DB.Where("article_url = ?", rawURL).Order("id").First(&exact).Error
	if err == nil {
		return &URLCheckResult{
			Exists:     true,
			DocumentID: exact.DocumentID,
			DatasetID:  exact.DatasetID,
			Title:      exact.ArticleTitle,
			StoredURL:  exact.ArticleURL,
			MatchType:  "exact",
		}, nil
	}

	if normalize {
		normalized := urlutil.Normalize(rawURL)
		var all []model.ArticleTag
		if err := model.DB.Select("document_id, dataset_id, article_title, article_url").Find(&all).Error; err != nil {
			return nil, err
		}
		for _, at := range all {
			if urlutil.Normalize(at.ArticleURL) == normalized {
				return &URLCheckResult{
					Exists:     true,
					DocumentID: at.DocumentID,
					DatasetID:  at.DatasetID,
					Title:      at.ArticleTitle,
					StoredURL:  at.ArticleURL,
					MatchType:  "normalized",
				}, nil
			}
		}
	}

	return &URLCheckResult{Exists: false}, nil
}

// ListDocuments 列出数据集内文档
func (s *RagFlowService) ListDocuments(datasetID string, page, limit int) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/api/v1/datasets/%s/documents?page=%d&limit=%d", s.cfg.BaseURL, datasetID, page, limit)
	return s.doGet(url)
}

// DeleteDocument 删除文档，同时清理本地关联记录
func (s *RagFlowService) DeleteDocument(datasetID, documentID string) error {
	url := fmt.Sprintf("%s/api/v1/datasets/%s/documents/%s", s.cfg.BaseURL, datasetID, documentID)

	req, err := http.NewRequest("DELETE", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return apperr.Upstream("failed to connect to ragflow", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return apperr.Upstream(fmt.Sprintf("ragflow delete failed: %s", string(body)), nil)
	}

	if err := model.DB.Where("document_id = ?", documentID).Delete(&model.ArticleTag{}).Error; err != nil {
		logger.Warningf("failed to clean article tags for document %s: %v", documentID, err)
	}
	return nil
}

// ListDatasets 列出 RAGFlow 数据集（知识库）
func (s *RagFlowService) ListDatasets(page, limit int) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/api/v1/datasets?page=%d&limit=%d", s.cfg.BaseURL, page, limit)
	return s.doGet(url)
}

// BatchUploadResult 批量上传结果
type BatchUploadResult struct {
	Filename string          `json:"filename"`
	Response *UploadResponse `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// BatchUpload 批量上传到同一数据集，单条失败不中止
func (s *RagFlowService) BatchUpload(datasetID string, documents []UploadRequest) ([]BatchUploadResult, int) {
	results := make([]BatchUploadResult, 0, len(documents))
	failed := 0

	for _, doc := range documents {
		r := BatchUploadResult{Filename: doc.Filename}
		resp, err := s.uploadDocument(datasetID, doc.Filename, doc.Content)
		if err != nil {
			r.Error = err.Error()
			failed++
		} else {
			r.Response = resp
		}
		results = append(results, r)
	}
	return results, failed
}

// Ping 探测 RAGFlow 可达性，返回耗时
func (s *RagFlowService) Ping() (time.Duration, error) {
	start := time.Now()
	_, err := s.doGet(fmt.Sprintf("%s/api/v1/datasets?page=1&limit=1", s.cfg.BaseURL))
	return time.Since(start), err
}

func (s *RagFlowService) uploadDocument(datasetID, filename, content string) (*UploadResponse, error) {
	url := fmt.Sprintf("%s/api/v1/datasets/%s/documents", s.cfg.BaseURL, datasetID)

	body, err := json.Marshal(map[string]interface{}{
		"name": filename,
		"text": content,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream("failed to connect to ragflow", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Upstream("failed to read ragflow response", err)
	}

	var result UploadResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, apperr.Upstream("unexpected ragflow response", err)
	}
	return &result, nil
}

func (s *RagFlowService) doGet(url string) (map[string]interface{}, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream("failed to connect to ragflow", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Upstream("failed to read ragflow response", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperr.Upstream("unexpected ragflow response", err)
	}
	return result, nil
}

package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ingest-console/internal/config"
	"ingest-console/internal/pkg/apperr"
)

// ErrAPIKeyMissing n8n API Key 未配置。与网络类故障区分开，
// 调用方据此提示「请配置 API Key」而不是展示原始错误。
var ErrAPIKeyMissing = apperr.New(apperr.KindUpstreamUnavailable, "n8n API key not configured, set n8n.api_key or INGEST_N8N_API_KEY")

// WorkflowService 工作流引擎 (n8n) 桥接服务
type WorkflowService struct {
	cfg    config.N8NConfig
	client *http.Client
}

// NewWorkflowService 创建工作流服务
func NewWorkflowService(cfg config.N8NConfig) *WorkflowService {
	return &WorkflowService{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// WorkflowStatus 对外暴露的工作流状态
type WorkflowStatus struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Active    bool          `json:"active"`
	CreatedAt string        `json:"created_at,omitempty"`
	UpdatedAt string        `json:"updated_at,omitempty"`
	Tags      []WorkflowTag `json:"tags,omitempty"`
}

// WorkflowTag 工作流标签
type WorkflowTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WorkflowExecution 工作流执行记录
type WorkflowExecution struct {
	ID         string `json:"id"`
	WorkflowID string `json:"workflow_id"`
	Finished   bool   `json:"finished"`
	Status     string `json:"status"` // success / error / waiting
	StartedAt  string `json:"started_at"`
	StoppedAt  string `json:"stopped_at,omitempty"`
}

// n8n API 响应结构
type n8nWorkflow struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Active    bool     `json:"active"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
	Tags      []n8nTag `json:"tags"`
}

type n8nTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type n8nWorkflowsResponse struct {
	Data []n8nWorkflow `json:"data"`
}

type n8nExecution struct {
	ID         string `json:"id"`
	WorkflowID string `json:"workflowId"`
	Finished   bool   `json:"finished"`
	Status     string `json:"status"`
	StartedAt  string `json:"startedAt"`
	StoppedAt  string `json:"stoppedAt"`
}

type n8nExecutionsResponse struct {
	Data []n8nExecution `json:"data"`
}

// List 拉取工作流列表
func (s *WorkflowService) List() ([]WorkflowStatus, error) {
	body, err := s.doAPI("GET", "/workflows")
	if err != nil {
		return nil, err
	}

	var resp n8nWorkflowsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Upstream("unexpected n8n response", err)
	}

	workflows := make([]WorkflowStatus, len(resp.Data))
	for i, wf := range resp.Data {
		workflows[i] = toWorkflowStatus(wf)
	}
	return workflows, nil
}

// Get 获取单个工作流
func (s *WorkflowService) Get(id string) (*WorkflowStatus, error) {
	body, err := s.doAPI("GET", "/workflows/"+id)
	if err != nil {
		return nil, err
	}

	var wf n8nWorkflow
	if err := json.Unmarshal(body, &wf); err != nil {
		return nil, apperr.Upstream("unexpected n8n response", err)
	}
	status := toWorkflowStatus(wf)
	return &status, nil
}

// Activate 激活工作流
func (s *WorkflowService) Activate(id string) error {
	_, err := s.doAPI("POST", "/workflows/"+id+"/activate")
	return err
}

// Deactivate 停用工作流
func (s *WorkflowService) Deactivate(id string) error {
	_, err := s.doAPI("POST", "/workflows/"+id+"/deactivate")
	return err
}

// Executions 获取最近执行记录，最新在前；workflowID 为空时不过滤
func (s *WorkflowService) Executions(workflowID string, limit int) ([]WorkflowExecution, error) {
	if limit < 1 {
		limit = 20
	}
	path := fmt.Sprintf("/executions?limit=%d", limit)
	if workflowID != "" {
		path += "&workflowId=" + workflowID
	}

	body, err := s.doAPI("GET", path)
	if err != nil {
		return nil, err
	}

	var resp n8nExecutionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Upstream("unexpected n8n response", err)
	}

	executions := make([]WorkflowExecution, len(resp.Data))
	for i, ex := range resp.Data {
		executions[i] = WorkflowExecution{
			ID:         ex.ID,
			WorkflowID: ex.WorkflowID,
			Finished:   ex.Finished,
			Status:     ex.Status,
			StartedAt:  ex.StartedAt,
			StoppedAt:  ex.StoppedAt,
		}
	}
	return executions, nil
}

// Trigger 按名称触发工作流。名称是 n8n webhook 路径，不要求与
// List 返回的工作流 ID 对应。触发不需要 API Key。
func (s *WorkflowService) Trigger(name string, payload map[string]interface{}) (map[string]interface{}, error) {
	url := fmt.Sprintf("%s/webhook/%s", s.cfg.WebhookBaseURL, name)

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, apperr.Validation("invalid trigger payload: " + err.Error())
		}
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperr.Dispatch("failed to reach n8n webhook", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	var result map[string]interface{}
	json.Unmarshal(respBody, &result)

	if resp.StatusCode >= 400 {
		return result, apperr.Dispatch(fmt.Sprintf("workflow trigger returned HTTP %d", resp.StatusCode), nil)
	}
	return result, nil
}

// toWorkflowStatus n8n 响应转对外结构
func toWorkflowStatus(wf n8nWorkflow) WorkflowStatus {
	tags := make([]WorkflowTag, len(wf.Tags))
	for i, t := range wf.Tags {
		tags[i] = WorkflowTag{ID: t.ID, Name: t.Name}
	}
	return WorkflowStatus{
		ID:        wf.ID,
		Name:      wf.Name,
		Active:    wf.Active,
		CreatedAt: wf.CreatedAt,
		UpdatedAt: wf.UpdatedAt,
		Tags:      tags,
	}
}

// doAPI 调用 n8n 管理 API，缺少 API Key 时直接返回 ErrAPIKeyMissing
func (s *WorkflowService) doAPI(method, path string) ([]byte, error) {
	if s.cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	req, err := http.NewRequest(method, s.cfg.APIBaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-N8N-API-KEY", s.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, apperr.Upstream("failed to connect to n8n", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Upstream(fmt.Sprintf("n8n returned HTTP %d", resp.StatusCode), nil)
	}

	return io.ReadAll(resp.Body)
}

package service

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"ingest-console/internal/model"
	"ingest-console/internal/pkg/apperr"
)

// WebhookService Webhook 触发与历史记录服务。
// 每次触发相互独立：各自持有自己的 http.Client 与历史记录行，
// 并发触发互不阻塞，失败不重试。
type WebhookService struct{}

// NewWebhookService 创建 Webhook 服务
func NewWebhookService() *WebhookService {
	return &WebhookService{}
}

// Trigger 触发一次 Webhook，无论成败都恰好追加一条历史记录。
// 请求体优先级：payload 的顶层字段覆盖 body_template 中的同名字段；
// 只有其一时直接使用该项。
func (s *WebhookService) Trigger(id uint, payload map[string]interface{}, customVars map[string]string) (*model.WebhookHistory, error) {
	var webhook model.WebhookConfig
	if err := model.DB.First(&webhook, id).Error; err != nil {
		return nil, apperr.NotFound("webhook not found")
	}

	vars := buildVariables(&webhook, payload, customVars)

	body, err := buildRequestBody(renderTemplate(webhook.BodyTemplate, vars), payload)
	if err != nil {
		return nil, err
	}

	history := &model.WebhookHistory{
		WebhookID:     webhook.ID,
		RequestMethod: webhook.Method,
		RequestURL:    renderTemplate(webhook.URL, vars),
		RequestBody:   body,
		Status:        model.WebhookStatusPending,
	}

	// 先落记录再外呼，保证每次触发必有一行
	if err := model.DB.Create(history).Error; err != nil {
		return nil, err
	}

	dispatch(&webhook, history, vars)

	if err := model.DB.Save(history).Error; err != nil {
		return history, err
	}

	if history.Status == model.WebhookStatusFailure {
		return history, apperr.Dispatch("webhook dispatch failed: "+history.ErrorMessage, nil)
	}
	return history, nil
}

// History 返回最近的触发记录，最新在前
func (s *WebhookService) History(webhookID uint, status string, limit int) ([]model.WebhookHistory, error) {
	if limit < 1 {
		limit = 20
	}
	query := model.DB.Where("webhook_id = ?", webhookID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var history []model.WebhookHistory
	if err := query.Order("created_at DESC").Limit(limit).Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

// PurgeHistoryBefore 清理指定时间之前的历史记录，返回删除行数
func (s *WebhookService) PurgeHistoryBefore(cutoff time.Time) (int64, error) {
	result := model.DB.Where("created_at < ?", cutoff).Delete(&model.WebhookHistory{})
	return result.RowsAffected, result.Error
}

// dispatch 执行一次 HTTP 外呼并把结果写入 history。
// duration_ms 为整个调用的墙钟耗时，包含连接建立；超时记为失败，
// response_code 置 0，error_message 说明原因。
func dispatch(webhook *model.WebhookConfig, history *model.WebhookHistory, vars map[string]string) {
	client := &http.Client{Timeout: time.Duration(webhook.TimeoutSeconds) * time.Second}

	start := time.Now()

	req, err := http.NewRequest(history.RequestMethod, history.RequestURL, bytes.NewBufferString(history.RequestBody))
	if err != nil {
		history.DurationMs = int(time.Since(start).Milliseconds())
		history.Status = model.WebhookStatusFailure
		history.ErrorMessage = err.Error()
		return
	}

	req.Header.Set("Content-Type", webhook.ContentType)
	if webhook.Headers != nil {
		var headers map[string]string
		if err := json.Unmarshal(webhook.Headers, &headers); err == nil {
			for k, v := range headers {
				req.Header.Set(k, renderTemplate(v, vars))
			}
		}
	}

	resp, err := client.Do(req)
	history.DurationMs = int(time.Since(start).Milliseconds())

	if err != nil {
		history.Status = model.WebhookStatusFailure
		history.ResponseCode = 0
		history.ErrorMessage = err.Error()
		return
	}
	defer resp.Body.Close()

	history.ResponseCode = resp.StatusCode
	respBody, _ := io.ReadAll(resp.Body)
	history.ResponseBody = string(respBody)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		history.Status = model.WebhookStatusSuccess
	} else {
		history.Status = model.WebhookStatusFailure
		history.ErrorMessage = "upstream returned HTTP " + resp.Status
	}
}

// buildRequestBody 合并模板与触发 payload。两者都存在时模板作为基底，
// payload 顶层字段覆盖同名模板字段。
func buildRequestBody(template string, payload map[string]interface{}) (string, error) {
	template = strings.TrimSpace(template)

	if payload == nil {
		return template, nil
	}

	if template == "" {
		data, err := json.Marshal(payload)
		if err != nil {
			return "", apperr.Validation("invalid trigger payload: " + err.Error())
		}
		return string(data), nil
	}

	var base map[string]interface{}
	if err := json.Unmarshal([]byte(template), &base); err != nil {
		return "", apperr.Validation("body_template is not a JSON object, cannot merge trigger payload")
	}
	for k, v := range payload {
		base[k] = v
	}

	data, err := json.Marshal(base)
	if err != nil {
		return "", apperr.Validation("invalid trigger payload: " + err.Error())
	}
	return string(data), nil
}

var templateVarRegex = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// renderTemplate 替换字符串中的 {{variable}} 占位符，未知变量原样保留
func renderTemplate(template string, vars map[string]string) string {
	if template == "" || len(vars) == 0 {
		return template
	}
	return templateVarRegex.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		if val, ok := vars[name]; ok {
			return val
		}
		return match
	})
}

// buildVariables 组装模板变量：内置变量 + 调用方自定义变量（后者优先）
func buildVariables(webhook *model.WebhookConfig, payload map[string]interface{}, customVars map[string]string) map[string]string {
	now := time.Now()
	vars := map[string]string{
		"timestamp":    now.Format(time.RFC3339),
		"date":         now.Format("2006-01-02"),
		"webhook_name": webhook.Name,
	}

	if payload != nil {
		if url, ok := payload["article_url"].(string); ok {
			vars["article_url"] = url
		}
	}

	for k, v := range customVars {
		vars[k] = v
	}
	return vars
}

package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// DefaultWebhookMethod 默认请求方法
	DefaultWebhookMethod = "POST"
	// DefaultWebhookContentType 默认 Content-Type
	DefaultWebhookContentType = "application/json"
	// DefaultWebhookTimeout 默认超时（秒）
	DefaultWebhookTimeout = 30
	// MinWebhookTimeout / MaxWebhookTimeout 超时允许区间（秒）
	MinWebhookTimeout = 1
	MaxWebhookTimeout = 300
)

// Webhook 触发结果状态
const (
	WebhookStatusPending = "pending"
	WebhookStatusSuccess = "success"
	WebhookStatusFailure = "failure"
)

// WebhookConfig 出站 Webhook 配置
type WebhookConfig struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"size:200;not null" json:"name"`
	URL            string         `gorm:"size:1000;not null" json:"url"`
	Method         string         `gorm:"size:10;default:'POST'" json:"method"`
	ContentType    string         `gorm:"size:100;default:'application/json'" json:"content_type"`
	Headers        datatypes.JSON `json:"headers,omitempty"`
	BodyTemplate   string         `gorm:"type:text" json:"body_template,omitempty"`
	TimeoutSeconds int            `gorm:"default:30" json:"timeout_seconds"`
	Description    string         `gorm:"type:text" json:"description"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	History []WebhookHistory `gorm:"foreignKey:WebhookID" json:"history,omitempty"`
}

func (WebhookConfig) TableName() string {
	return "webhook_configs"
}

// WebhookHistory 每次触发追加一条，操作员不可编辑
type WebhookHistory struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WebhookID     uint      `gorm:"index" json:"webhook_id"`
	RequestMethod string    `gorm:"size:10" json:"request_method"`
	RequestURL    string    `gorm:"size:1000" json:"request_url"`
	RequestBody   string    `gorm:"type:text" json:"request_body,omitempty"`
	Status        string    `gorm:"size:20;default:'pending'" json:"status"`
	ResponseCode  int       `json:"response_code,omitempty"`
	ResponseBody  string    `gorm:"type:text" json:"response_body,omitempty"`
	DurationMs    int       `json:"duration_ms,omitempty"`
	ErrorMessage  string    `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (WebhookHistory) TableName() string {
	return "webhook_history"
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// Setting 运行时设置项
type Setting struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Key         string         `gorm:"size:255;uniqueIndex;not null" json:"key"`
	Value       string         `gorm:"type:text" json:"value"`
	ValueType   string         `gorm:"size:50;default:'string'" json:"value_type"` // string / int / bool / json
	Category    string         `gorm:"size:100;index" json:"category"`             // api / feature / ui
	Description string         `gorm:"type:text" json:"description"`
	IsSecret    bool           `gorm:"default:false" json:"is_secret"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Setting) TableName() string {
	return "settings"
}

// Masked 返回脱敏后的副本，密钥类设置的值不回显
func (s Setting) Masked() Setting {
	if s.IsSecret && s.Value != "" {
		s.Value = "******"
	}
	return s
}

package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// MinFetchIntervalMinutes RSS 拉取周期下限
	MinFetchIntervalMinutes = 5
	// DefaultFetchIntervalMinutes 默认拉取周期
	DefaultFetchIntervalMinutes = 60
)

// RSSFeed RSS 订阅源。拉取周期仅是对外部轮询器的声明，本服务不抓取。
type RSSFeed struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Name                 string         `gorm:"size:200;not null" json:"name"`
	URL                  string         `gorm:"size:1000;uniqueIndex;not null" json:"url"`
	Category             string         `gorm:"size:100;index" json:"category"`
	Description          string         `gorm:"type:text" json:"description"`
	IsActive             bool           `gorm:"default:true" json:"is_active"`
	FetchIntervalMinutes int            `gorm:"default:60" json:"fetch_interval_minutes"`
	LastFetchedAt        *time.Time     `json:"last_fetched_at,omitempty"`
	Metadata             datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	Tags []Tag `gorm:"many2many:rss_tags;" json:"tags,omitempty"`
}

func (RSSFeed) TableName() string {
	return "rss_feeds"
}

// FetchDue 按声明的周期判断是否到达下次拉取时间
func (f *RSSFeed) FetchDue(now time.Time) bool {
	if !f.IsActive {
		return false
	}
	if f.LastFetchedAt == nil {
		return true
	}
	interval := time.Duration(f.FetchIntervalMinutes) * time.Minute
	return now.Sub(*f.LastFetchedAt) >= interval
}

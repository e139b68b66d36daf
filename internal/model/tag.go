package model

import (
	"time"

	"gorm.io/gorm"
)

// DefaultTagColor 新建标签的默认颜色
const DefaultTagColor = "#409EFF"

// Tag 内容标签，被数据源、RSS 源和数据集映射引用
type Tag struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Color       string         `gorm:"size:20;default:'#409EFF'" json:"color"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	DataSources     []DataSource     `gorm:"many2many:datasource_tags;" json:"data_sources,omitempty"`
	RSSFeeds        []RSSFeed        `gorm:"many2many:rss_tags;" json:"rss_feeds,omitempty"`
	DatasetMappings []DatasetMapping `gorm:"many2many:dataset_mapping_tags;" json:"dataset_mappings,omitempty"`
}

func (Tag) TableName() string {
	return "tags"
}

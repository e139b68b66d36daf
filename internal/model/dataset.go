package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultParserID 知识库默认文档解析器
const DefaultParserID = "naive"

// DatasetMapping 标签/分类到外部知识库数据集的路由映射。
// 活跃映射中最多一个 is_default。
type DatasetMapping struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;uniqueIndex;not null" json:"name"`
	DisplayName string         `gorm:"size:200" json:"display_name"`
	DatasetID   string         `gorm:"size:100;not null" json:"dataset_id"`
	Description string         `gorm:"type:text" json:"description"`
	ParserID    string         `gorm:"size:50;default:'naive'" json:"parser_id"`
	IsDefault   bool           `gorm:"default:false" json:"is_default"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Tags []Tag `gorm:"many2many:dataset_mapping_tags;" json:"tags,omitempty"`
}

func (DatasetMapping) TableName() string {
	return "dataset_mappings"
}

// ArticleTag 已入库文档与标签的关联记录，同时用于 URL 去重检查
type ArticleTag struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	DocumentID   string    `gorm:"size:100;not null;index" json:"document_id"`
	DatasetID    string    `gorm:"size:100;not null;index" json:"dataset_id"`
	TagID        uint      `gorm:"index" json:"tag_id"`
	ArticleTitle string    `gorm:"size:1000" json:"article_title"`
	ArticleURL   string    `gorm:"size:2000" json:"article_url"`
	CreatedAt    time.Time `json:"created_at"`

	Tag Tag `gorm:"foreignKey:TagID" json:"tag,omitempty"`
}

func (ArticleTag) TableName() string {
	return "article_tags"
}

package service

import (
	"ingest-console/internal/model"
	"ingest-console/internal/pkg/apperr"
)

// TagService 标签服务，承接需要跨多条记录的标签操作
type TagService struct{}

// NewTagService 创建标签服务
func NewTagService() *TagService {
	return &TagService{}
}

// GetByNames 按名称批量获取标签，缺失的名称忽略
func (s *TagService) GetByNames(names []string) ([]model.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var tags []model.Tag
	if err := model.DB.Where("name IN ?", names).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// GetOrCreateByNames 按名称获取标签，缺失的即时创建
func (s *TagService) GetOrCreateByNames(names []string) ([]model.Tag, error) {
	existing, err := s.GetByNames(names)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]model.Tag, len(existing))
	for _, t := range existing {
		byName[t.Name] = t
	}

	tags := make([]model.Tag, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if t, ok := byName[name]; ok {
			tags = append(tags, t)
			continue
		}
		tag := model.Tag{Name: name, Color: model.DefaultTagColor}
		if err := model.DB.Create(&tag).Error; err != nil {
			return nil, err
		}
		byName[name] = tag
		tags = append(tags, tag)
	}
	return tags, nil
}

// MatchByKeywords 按关键字模糊匹配标签，去重合并
func (s *TagService) MatchByKeywords(keywords []string) ([]model.Tag, error) {
	seen := make(model.TagSet)
	var tags []model.Tag
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		var matched []model.Tag
		if err := model.DB.Where("name LIKE ?", "%"+kw+"%").Find(&matched).Error; err != nil {
			return nil, err
		}
		for _, t := range matched {
			if !seen.Contains(t.ID) {
				seen.Add(t.ID)
				tags = append(tags, t)
			}
		}
	}
	return tags, nil
}

// ReferenceCount 统计标签被数据源/RSS 源/数据集映射引用的总次数
func (s *TagService) ReferenceCount(id uint) (int64, error) {
	var total int64
	for _, table := range []string{"datasource_tags", "rss_tags", "dataset_mapping_tags"} {
		var count int64
		if err := model.DB.Table(table).Where("tag_id = ?", id).Count(&count).Error; err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

// Delete 删除标签，仍被引用时返回 Conflict
func (s *TagService) Delete(id uint) error {
	refs, err := s.ReferenceCount(id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apperr.Conflict("tag is still referenced by other resources")
	}
	return model.DB.Delete(&model.Tag{}, id).Error
}

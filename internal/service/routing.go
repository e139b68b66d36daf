package service

import (
	"fmt"
	"sort"

	"ingest-console/internal/model"
	"ingest-console/internal/pkg/apperr"
)

// ErrNoDefaultDataset 无标签/分类命中且没有默认映射时路由失败
var ErrNoDefaultDataset = apperr.New(apperr.KindNotFound, "no matching dataset and no default mapping configured")

// 路由命中方式
const (
	RouteByTag      = "tag"
	RouteByCategory = "category"
	RouteByDefault  = "default"
)

// CategorySource 数据源/RSS 源在路由快照中的投影：分类与标签集合
type CategorySource struct {
	Category string
	TagIDs   []uint
}

// RoutingSnapshot 路由决策所依赖的只读快照
type RoutingSnapshot struct {
	Mappings []model.DatasetMapping
	Sources  []CategorySource
}

// RoutingResult 路由结果。Warnings 记录数据完整性问题（如多个默认映射），
// 供调用方展示，不影响决策的确定性。
type RoutingResult struct {
	Mapping  *model.DatasetMapping
	Rule     string
	Warnings []string
}

// Resolve 为文档选择数据集映射，纯函数，不修改任何资源。
// 优先级：标签交集 → 来源分类回退 → 默认映射。
// 标签命中多个映射时按「交集最大、ID 最小」决出，保证同一输入必得同一结果。
func Resolve(snap RoutingSnapshot, docTags model.TagSet, category string) (*RoutingResult, error) {
	// 1. 标签交集
	if docTags.Len() > 0 {
		if result := matchByTags(snap.Mappings, docTags, RouteByTag); result != nil {
			return result, nil
		}
	}

	// 2. 分类回退：经由数据源/RSS 源的分类找到其标签集合，再按标签匹配映射
	if category != "" {
		catTags := make(model.TagSet)
		for _, src := range snap.Sources {
			if src.Category == category {
				for _, id := range src.TagIDs {
					catTags.Add(id)
				}
			}
		}
		if catTags.Len() > 0 {
			if result := matchByTags(snap.Mappings, catTags, RouteByCategory); result != nil {
				return result, nil
			}
		}
	}

	// 3. 默认映射（只认活跃映射）
	var defaults []model.DatasetMapping
	for _, m := range snap.Mappings {
		if m.IsActive && m.IsDefault {
			defaults = append(defaults, m)
		}
	}
	if len(defaults) == 0 {
		return nil, ErrNoDefaultDataset
	}

	sort.Slice(defaults, func(i, j int) bool { return defaults[i].ID < defaults[j].ID })
	result := &RoutingResult{Mapping: &defaults[0], Rule: RouteByDefault}
	if len(defaults) > 1 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("data integrity: %d active mappings marked default, selected lowest id %d", len(defaults), defaults[0].ID))
	}
	return result, nil
}

// matchByTags 在活跃映射中按标签交集选出唯一映射，无命中时返回 nil
func matchByTags(mappings []model.DatasetMapping, tags model.TagSet, rule string) *RoutingResult {
	type candidate struct {
		mapping      model.DatasetMapping
		intersection int
	}

	var candidates []candidate
	for _, m := range mappings {
		if !m.IsActive {
			continue
		}
		n := model.NewTagSet(m.Tags).IntersectionSize(tags)
		if n > 0 {
			candidates = append(candidates, candidate{mapping: m, intersection: n})
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	// 交集大的优先，其次 ID 小的优先
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].intersection != candidates[j].intersection {
			return candidates[i].intersection > candidates[j].intersection
		}
		return candidates[i].mapping.ID < candidates[j].mapping.ID
	})

	result := &RoutingResult{Mapping: &candidates[0].mapping, Rule: rule}
	ties := 0
	for _, c := range candidates {
		if c.intersection == candidates[0].intersection {
			ties++
		}
	}
	if ties > 1 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("ambiguous %s match: %d mappings tie with intersection %d, selected lowest id %d",
				rule, ties, candidates[0].intersection, candidates[0].mapping.ID))
	}
	return result
}

// RoutingService 路由服务：加载快照并执行路由
type RoutingService struct {
	tagService *TagService
}

// NewRoutingService 创建路由服务
func NewRoutingService() *RoutingService {
	return &RoutingService{tagService: NewTagService()}
}

// LoadSnapshot 从数据库加载当前路由快照
func (s *RoutingService) LoadSnapshot() (RoutingSnapshot, error) {
	var snap RoutingSnapshot

	if err := model.DB.Preload("Tags").Find(&snap.Mappings).Error; err != nil {
		return snap, err
	}

	var sources []model.DataSource
	if err := model.DB.Preload("Tags").Where("is_active = ? AND category <> ''", true).Find(&sources).Error; err != nil {
		return snap, err
	}
	for _, src := range sources {
		snap.Sources = append(snap.Sources, CategorySource{
			Category: src.Category,
			TagIDs:   model.NewTagSet(src.Tags).IDs(),
		})
	}

	var feeds []model.RSSFeed
	if err := model.DB.Preload("Tags").Where("is_active = ? AND category <> ''", true).Find(&feeds).Error; err != nil {
		return snap, err
	}
	for _, f := range feeds {
		snap.Sources = append(snap.Sources, CategorySource{
			Category: f.Category,
			TagIDs:   model.NewTagSet(f.Tags).IDs(),
		})
	}

	return snap, nil
}

// ResolveForDocument 解析文档标签并路由。autoCreate 为 true 时先补建缺失标签
// 再执行路由——建标签在前，否则新标签无法参与本次匹配。
func (s *RoutingService) ResolveForDocument(tagNames []string, category string, autoCreate bool) (*RoutingResult, []model.Tag, error) {
	var tags []model.Tag
	var err error
	if autoCreate {
		tags, err = s.tagService.GetOrCreateByNames(tagNames)
	} else {
		tags, err = s.tagService.GetByNames(tagNames)
	}
	if err != nil {
		return nil, nil, err
	}

	snap, err := s.LoadSnapshot()
	if err != nil {
		return nil, nil, err
	}

	result, err := Resolve(snap, model.NewTagSet(tags), category)
	if err != nil {
		return nil, tags, err
	}
	return result, tags, nil
}

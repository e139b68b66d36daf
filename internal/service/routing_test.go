package service

import (
	"errors"
	"testing"

	"ingest-console/internal/model"
)

func mapping(id uint, name string, tagIDs []uint, isDefault, isActive bool) model.DatasetMapping {
	tags := make([]model.Tag, len(tagIDs))
	for i, tid := range tagIDs {
		tags[i] = model.Tag{ID: tid}
	}
	return model.DatasetMapping{
		ID:        id,
		Name:      name,
		DatasetID: "ds-" + name,
		IsDefault: isDefault,
		IsActive:  isActive,
		Tags:      tags,
	}
}

func TestResolveByTag(t *testing.T) {
	snap := RoutingSnapshot{
		Mappings: []model.DatasetMapping{
			mapping(1, "security", []uint{1, 2}, false, true),
			mapping(2, "web", []uint{3}, false, true),
			mapping(3, "misc", nil, true, true),
		},
	}

	result, err := Resolve(snap, model.TagSetOf([]uint{2}), "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Mapping.ID != 1 {
		t.Errorf("Expected mapping 1, got %d", result.Mapping.ID)
	}
	if result.Rule != RouteByTag {
		t.Errorf("Expected rule %q, got %q", RouteByTag, result.Rule)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Unexpected warnings: %v", result.Warnings)
	}
}

func TestResolveByCategory(t *testing.T) {
	snap := RoutingSnapshot{
		Mappings: []model.DatasetMapping{
			mapping(1, "security", []uint{1}, false, true),
			mapping(2, "misc", nil, true, true),
		},
		Sources: []CategorySource{
			{Category: "infosec", TagIDs: []uint{1}},
			{Category: "news", TagIDs: []uint{9}},
		},
	}

	// 文档无标签，分类经由来源的标签集合命中映射
	result, err := Resolve(snap, nil, "infosec")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Mapping.ID != 1 {
		t.Errorf("Expected mapping 1, got %d", result.Mapping.ID)
	}
	if result.Rule != RouteByCategory {
		t.Errorf("Expected rule %q, got %q", RouteByCategory, result.Rule)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	snap := RoutingSnapshot{
		Mappings: []model.DatasetMapping{
			mapping(1, "security", []uint{1}, false, true),
			mapping(2, "misc", nil, true, true),
		},
	}

	result, err := Resolve(snap, model.TagSetOf([]uint{99}), "unknown")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Mapping.ID != 2 {
		t.Errorf("Expected default mapping 2, got %d", result.Mapping.ID)
	}
	if result.Rule != RouteByDefault {
		t.Errorf("Expected rule %q, got %q", RouteByDefault, result.Rule)
	}
}

func TestResolveNoDefault(t *testing.T) {
	snap := RoutingSnapshot{
		Mappings: []model.DatasetMapping{
			mapping(1, "security", []uint{1}, false, true),
		},
	}

	_, err := Resolve(snap, nil, "")
	if !errors.Is(err, ErrNoDefaultDataset) {
		t.Errorf("Expected ErrNoDefaultDataset, got %v", err)
	}
}

func TestResolveInactiveDefaultExcluded(t *testing.T) {
	snap := RoutingSnapshot{
		Mappings: []model.DatasetMapping{
			mapping(1, "old-default", nil, true, false),
		},
	}

	_, err := Resolve(snap, nil, "")
	if !errors.Is(err, ErrNoDefaultDataset) {
		t.Errorf("Inactive default should not be selected, got %v", err)
	}
}

func TestResolveTieBreak(t *testing.T) {
	snap := RoutingSnapshot{
		Mappings: []model.DatasetMapping{
			mapping(5, "b", []uint{1, 2}, false, true),
			mapping(3, "a", []uint{1, 2}, false, true),
		},
	}

	result, err := Resolve(snap, model.TagSetOf([]uint{1, 2}), "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Mapping.ID != 3 {
		t.Errorf("Tie should resolve to lowest id 3, got %d", result.Mapping.ID)
	}
	if len(result.Warnings) == 0 {
		t.Error("Expected ambiguity warning on tie")
	}
}

func TestResolvePrefersLargerIntersection(t *testing.T) {
	snap := RoutingSnapshot{
		Mappings: []model.DatasetMapping{
			mapping(1, "narrow", []uint{1}, false, true),
			mapping(2, "broad", []uint{1, 2}, false, true),
		},
	}

	result, err := Resolve(snap, model.TagSetOf([]uint{1, 2}), "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Mapping.ID != 2 {
		t.Errorf("Expected mapping 2 with larger intersection, got %d", result.Mapping.ID)
	}
}

func TestResolveInactiveMappingSkipped(t *testing.T) {
	snap := RoutingSnapshot{
		Mappings: []model.DatasetMapping{
			mapping(1, "retired", []uint{1}, false, false),
			mapping(2, "misc", nil, true, true),
		},
	}

	result, err := Resolve(snap, model.TagSetOf([]uint{1}), "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Mapping.ID != 2 {
		t.Errorf("Inactive mapping should be skipped, got %d", result.Mapping.ID)
	}
}

func TestResolveMultipleDefaultsWarns(t *testing.T) {
	snap := RoutingSnapshot{
		Mappings: []model.DatasetMapping{
			mapping(7, "default-b", nil, true, true),
			mapping(4, "default-a", nil, true, true),
		},
	}

	result, err := Resolve(snap, nil, "")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Mapping.ID != 4 {
		t.Errorf("Expected lowest-id default 4, got %d", result.Mapping.ID)
	}
	if len(result.Warnings) == 0 {
		t.Error("Expected data integrity warning for multiple defaults")
	}
}

func TestResolveDeterministic(t *testing.T) {
	snap := RoutingSnapshot{
		Mappings: []model.DatasetMapping{
			mapping(1, "a", []uint{1, 3}, false, true),
			mapping(2, "b", []uint{2, 3}, false, true),
			mapping(3, "misc", nil, true, true),
		},
		Sources: []CategorySource{
			{Category: "mixed", TagIDs: []uint{1, 2}},
		},
	}
	tags := model.TagSetOf([]uint{3})

	first, err := Resolve(snap, tags, "mixed")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		result, err := Resolve(snap, tags, "mixed")
		if err != nil {
			t.Fatalf("Resolve failed on iteration %d: %v", i, err)
		}
		if result.Mapping.ID != first.Mapping.ID || result.Rule != first.Rule {
			t.Fatalf("Resolve not deterministic: got mapping %d rule %q, want mapping %d rule %q",
				result.Mapping.ID, result.Rule, first.Mapping.ID, first.Rule)
		}
	}
}

package model

import (
	"testing"
	"time"
)

func TestTagSetBasics(t *testing.T) {
	s := NewTagSet([]Tag{{ID: 1}, {ID: 2}, {ID: 2}})

	if s.Len() != 2 {
		t.Errorf("Expected len 2, got %d", s.Len())
	}
	if !s.Contains(1) || !s.Contains(2) {
		t.Error("Set should contain ids 1 and 2")
	}

	s.Add(3)
	if !s.Contains(3) {
		t.Error("Add failed")
	}
	s.Remove(1)
	if s.Contains(1) {
		t.Error("Remove failed")
	}
}

func TestTagSetIntersectionSize(t *testing.T) {
	a := TagSetOf([]uint{1, 2, 3})
	b := TagSetOf([]uint{2, 3, 4, 5})

	if n := a.IntersectionSize(b); n != 2 {
		t.Errorf("Expected intersection 2, got %d", n)
	}
	// 交换参数结果一致
	if n := b.IntersectionSize(a); n != 2 {
		t.Errorf("Expected intersection 2, got %d", n)
	}
	if n := a.IntersectionSize(TagSetOf(nil)); n != 0 {
		t.Errorf("Expected empty intersection, got %d", n)
	}
}

func TestFetchDue(t *testing.T) {
	now := time.Now()
	past := now.Add(-2 * time.Hour)
	recent := now.Add(-10 * time.Minute)

	feed := RSSFeed{IsActive: true, FetchIntervalMinutes: 60}
	if !feed.FetchDue(now) {
		t.Error("Feed never fetched should be due")
	}

	feed.LastFetchedAt = &past
	if !feed.FetchDue(now) {
		t.Error("Feed fetched 2h ago with 60m interval should be due")
	}

	feed.LastFetchedAt = &recent
	if feed.FetchDue(now) {
		t.Error("Feed fetched 10m ago with 60m interval should not be due")
	}

	feed.IsActive = false
	feed.LastFetchedAt = &past
	if feed.FetchDue(now) {
		t.Error("Inactive feed should never be due")
	}
}

func TestSettingMasked(t *testing.T) {
	secret := Setting{Key: "api_key", Value: "real-secret", IsSecret: true}
	if masked := secret.Masked(); masked.Value != "******" {
		t.Errorf("Secret value should be masked, got %q", masked.Value)
	}
	if secret.Value != "real-secret" {
		t.Error("Masked must not mutate the original")
	}

	plain := Setting{Key: "theme", Value: "dark"}
	if masked := plain.Masked(); masked.Value != "dark" {
		t.Errorf("Plain value should pass through, got %q", masked.Value)
	}

	emptySecret := Setting{Key: "unset", IsSecret: true}
	if masked := emptySecret.Masked(); masked.Value != "" {
		t.Errorf("Empty secret should stay empty, got %q", masked.Value)
	}
}

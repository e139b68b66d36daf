package urlutil

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase host", "https://Example.COM/Post", "https://example.com/Post"},
		{"trailing slash", "https://example.com/post/", "https://example.com/post"},
		{"root path kept", "https://example.com/", "https://example.com/"},
		{"strip utm", "https://example.com/post?utm_source=rss&utm_medium=feed", "https://example.com/post"},
		{"strip fbclid", "https://example.com/post?fbclid=abc123", "https://example.com/post"},
		{"keep real query", "https://example.com/post?id=42&utm_campaign=x", "https://example.com/post?id=42"},
		{"drop fragment", "https://example.com/post#section-2", "https://example.com/post"},
		{"empty", "", ""},
		{"whitespace", "  https://example.com/post  ", "https://example.com/post"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := "https://Example.com/Post/?utm_source=rss#top"
	once := Normalize(raw)
	twice := Normalize(once)
	if once != twice {
		t.Errorf("Normalize not idempotent: %q vs %q", once, twice)
	}
}

func TestFuzzyMatch(t *testing.T) {
	if !FuzzyMatch("https://a.com/blog/2026/post-title", "https://b.com/blog/2026/post-title/", 5) {
		t.Error("Expected match for same path on different hosts")
	}
	if FuzzyMatch("https://a.com/x", "https://a.com/y", 5) {
		t.Error("Short paths below minimum must not match")
	}
	if FuzzyMatch("https://a.com/blog/alpha", "https://a.com/blog/bravo", 5) {
		t.Error("Distinct paths must not match")
	}
}

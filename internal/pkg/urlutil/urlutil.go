package urlutil

import (
	"net/url"
	"strings"
)

// trackingParams 常见跟踪参数，归一化时剔除
var trackingParams = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_term",
	"utm_content",
	"fbclid",
	"gclid",
	"ref",
	"source",
}

// Normalize URL 归一化：域名小写、去末尾斜杠、去跟踪参数、去 fragment。
// 解析失败时原样返回。
func Normalize(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Host = strings.ToLower(parsed.Host)

	if len(parsed.Path) > 1 {
		parsed.Path = strings.TrimRight(parsed.Path, "/")
	}

	q := parsed.Query()
	for _, param := range trackingParams {
		q.Del(param)
	}
	parsed.RawQuery = q.Encode()
	parsed.Fragment = ""

	return parsed.String()
}

// FuzzyMatch 按路径包含关系粗略判断两个 URL 是否指向同一页面
func FuzzyMatch(url1, url2 string, minPathLen int) bool {
	p1, err1 := url.Parse(url1)
	p2, err2 := url.Parse(url2)
	if err1 != nil || err2 != nil {
		return false
	}

	path1 := strings.TrimRight(p1.Path, "/")
	path2 := strings.TrimRight(p2.Path, "/")

	if len(path1) < minPathLen || len(path2) < minPathLen {
		return false
	}

	return strings.Contains(path1, path2) || strings.Contains(path2, path1)
}

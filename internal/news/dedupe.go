package news

import (
	"fmt"
	"strings"

	"market-board/internal/model"
)

// Dedupe drops repeated items within one provider result, keeping the first
// occurrence. Items are keyed by link, or by title when the link is a
// placeholder.
func Dedupe(items []model.NewsItem) []model.NewsItem {
	seen := make(map[string]bool, len(items))
	out := make([]model.NewsItem, 0, len(items))
	for _, it := range items {
		key := itemKey(it)
		if key != "" && seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

func itemKey(it model.NewsItem) string {
	link := strings.TrimSpace(it.Link)
	if link != "" && link != "#" {
		return fmt.Sprintf("url:%s", link)
	}
	title := strings.TrimSpace(it.Title)
	if title != "" && title != "Untitled" {
		return fmt.Sprintf("title:%s", strings.ToLower(title))
	}
	return ""
}

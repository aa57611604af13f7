package bookmark

import "github.com/curiohq/curio/server/internal/model"

// IDFunc mints item ids. Injected so tests can make extraction deterministic.
type IDFunc func() string

// Search types accepted on bookmark requests.
const (
	SearchTypeWeb    = "web"
	SearchTypePexels = "pexels"
	SearchTypeGitHub = "github"
)

// SourceForSearchType maps a request searchType to the session source field.
func SourceForSearchType(searchType string) string {
	switch searchType {
	case SearchTypeWeb:
		return "google"
	case SearchTypePexels:
		return "pexels"
	case SearchTypeGitHub:
		return "github"
	default:
		return searchType
	}
}

func str(m model.RawResult, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func nestedStr(m model.RawResult, outer, inner string) string {
	if sub, ok := m[outer].(map[string]interface{}); ok {
		if v, ok := sub[inner].(string); ok {
			return v
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ExtractItems turns session results at the given indices into normalized
// collection items. Results may carry either the provider's mapped shape or
// the upstream API's raw shape; field fallbacks cover both. Out-of-range
// indices are dropped silently and an unknown searchType yields nothing.
// Output order follows the indices order, not result order.
func ExtractItems(results []model.RawResult, indices []int, searchType string, newID IDFunc) []model.CollectionItem {
	var items []model.CollectionItem
	for _, idx := range indices {
		if idx < 0 || idx >= len(results) {
			continue
		}
		r := results[idx]

		switch searchType {
		case SearchTypeWeb:
			items = append(items, model.CollectionItem{
				ID:        newID(),
				Type:      model.ItemTypeArticle,
				URL:       firstNonEmpty(str(r, "url"), str(r, "link")),
				Title:     firstNonEmpty(str(r, "title"), "Untitled"),
				Thumbnail: firstNonEmpty(str(r, "thumbnail"), str(r, "imageUrl")),
			})
		case SearchTypePexels:
			items = append(items, model.CollectionItem{
				ID:        newID(),
				Type:      model.ItemTypeImage,
				URL:       firstNonEmpty(str(r, "url"), nestedStr(r, "src", "original")),
				Title:     firstNonEmpty(str(r, "title"), str(r, "alt"), "Image"),
				Thumbnail: firstNonEmpty(str(r, "imageUrl"), nestedStr(r, "src", "medium"), nestedStr(r, "src", "small")),
			})
		case SearchTypeGitHub:
			items = append(items, model.CollectionItem{
				ID:        newID(),
				Type:      model.ItemTypeRepo,
				URL:       firstNonEmpty(str(r, "url"), str(r, "html_url")),
				Title:     firstNonEmpty(str(r, "fullName"), str(r, "full_name"), str(r, "name"), "Repo"),
				Thumbnail: nestedStr(r, "owner", "avatar_url"),
			})
		}
	}
	return items
}

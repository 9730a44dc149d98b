package apiclient

import (
	"net/url"
	"strconv"
	"strings"

	"docrepo/internal/domain"
)

// SearchQuery encodes the populated filters. Blank text filters, an empty
// tag set and a non-positive version are left out entirely. Text filters
// are sent as given.
func SearchQuery(f domain.SearchFilters) url.Values {
	q := url.Values{}
	if strings.TrimSpace(f.Title) != "" {
		q.Set("title", f.Title)
	}
	if strings.TrimSpace(f.Description) != "" {
		q.Set("description", f.Description)
	}
	if tags := domain.UniqueStrings(f.Tags); len(tags) > 0 {
		q.Set("tags", strings.Join(tags, ","))
	}
	if f.Version > 0 {
		q.Set("version", strconv.Itoa(f.Version))
	}
	return q
}

package browse

import (
	"strconv"
	"strings"

	"docrepo/internal/combobox"
	"docrepo/internal/domain"
)

// SearchForm collects the optional search filters. Its tag selector only
// offers catalog tags.
type SearchForm struct {
	Title       string
	Description string
	Version     string

	tags *combobox.Selector[string]
}

// NewSearchForm creates a form over the tag catalog.
func NewSearchForm(catalog []domain.Tag, set ...combobox.Setting) *SearchForm {
	return &SearchForm{tags: combobox.NewTagSelector(catalog, nil, false, nil, set...)}
}

// Tags is the tag selector.
func (f *SearchForm) Tags() *combobox.Selector[string] {
	return f.tags
}

// Filters converts the form into search filters. Blank fields are left
// unset; a version must be a positive integer.
func (f *SearchForm) Filters() (domain.SearchFilters, error) {
	filters := domain.SearchFilters{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		Tags:        f.tags.Selected(),
	}
	if v := strings.TrimSpace(f.Version); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return domain.SearchFilters{}, domain.ErrInvalidVersion
		}
		filters.Version = n
	}
	return filters, nil
}

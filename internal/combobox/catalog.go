package combobox

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"docrepo/internal/domain"
	"docrepo/internal/port"
)

// Setting tunes the selectors built by NewTagSelector and
// NewDepartmentSelector.
type Setting func(*settings)

type settings struct {
	blurDelay time.Duration
}

// WithBlurDelay overrides DefaultBlurDelay. A non-positive delay keeps the
// default.
func WithBlurDelay(d time.Duration) Setting {
	return func(s *settings) { s.blurDelay = d }
}

func applySettings(list []Setting) settings {
	var s settings
	for _, fn := range list {
		if fn != nil {
			fn(&s)
		}
	}
	return s
}

// NewTagSelector selects tag names. With allowCreate, names missing from the
// catalog can be typed in; the server creates them on save.
func NewTagSelector(catalog []domain.Tag, selected []string, allowCreate bool, onChange func([]string), set ...Setting) *Selector[string] {
	pool := make([]string, 0, len(catalog))
	for _, t := range catalog {
		pool = append(pool, t.Name)
	}
	opts := Options[string]{
		Key:       func(s string) string { return s },
		OnChange:  onChange,
		BlurDelay: applySettings(set).blurDelay,
	}
	if allowCreate {
		opts.Create = func(text string) string { return text }
	}
	return New(pool, selected, opts)
}

// NewDepartmentSelector selects departments by id and filters on their name.
// Selected ids missing from the catalog are shown by their number.
func NewDepartmentSelector(catalog []domain.Department, selectedIDs []int64, onChange func([]int64), set ...Setting) *Selector[domain.Department] {
	opts := Options[domain.Department]{
		Key:       func(d domain.Department) string { return strconv.FormatInt(d.ID, 10) },
		Label:     func(d domain.Department) string { return d.Name },
		Match:     func(d domain.Department) string { return d.Name },
		BlurDelay: applySettings(set).blurDelay,
	}
	if onChange != nil {
		opts.OnChange = func(sel []domain.Department) { onChange(DepartmentIDs(sel)) }
	}
	return New(catalog, ResolveDepartments(catalog, selectedIDs), opts)
}

// ResolveDepartments maps ids to catalog entries, keeping order.
func ResolveDepartments(catalog []domain.Department, ids []int64) []domain.Department {
	byID := make(map[int64]domain.Department, len(catalog))
	for _, d := range catalog {
		byID[d.ID] = d
	}
	out := make([]domain.Department, 0, len(ids))
	for _, id := range domain.UniqueIDs(ids) {
		d, ok := byID[id]
		if !ok {
			d = domain.Department{ID: id, Name: strconv.FormatInt(id, 10)}
		}
		out = append(out, d)
	}
	return out
}

// DepartmentIDs returns the ids of departments in order.
func DepartmentIDs(deps []domain.Department) []int64 {
	ids := make([]int64, len(deps))
	for i, d := range deps {
		ids[i] = d.ID
	}
	return ids
}

// LoadTags fetches the tag catalog. A failure degrades to an empty pool.
func LoadTags(ctx context.Context, api port.CatalogAPI, log *zap.Logger) []domain.Tag {
	tags, err := api.ListTags(ctx)
	if err != nil {
		log.Warn("combobox.LoadTags: catalog unavailable", zap.Error(err))
		return nil
	}
	return tags
}

// LoadDepartments fetches the department catalog. A failure degrades to an
// empty pool.
func LoadDepartments(ctx context.Context, api port.CatalogAPI, log *zap.Logger) []domain.Department {
	deps, err := api.ListDepartments(ctx)
	if err != nil {
		log.Warn("combobox.LoadDepartments: catalog unavailable", zap.Error(err))
		return nil
	}
	return deps
}

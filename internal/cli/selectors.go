package cli

import (
	"fmt"
	"strconv"
	"strings"

	"docrepo/internal/combobox"
	"docrepo/internal/domain"
)

// selectorSettings applies the configured selector timing.
func (a *App) selectorSettings() []combobox.Setting {
	if a.cfg == nil {
		return nil
	}
	return []combobox.Setting{combobox.WithBlurDelay(a.cfg.Selector.BlurDelay)}
}

// selectDepartments adds each value, an id or a case-insensitive name, to
// sel. Values missing from the catalog are rejected.
func selectDepartments(sel *combobox.Selector[domain.Department], values []string) error {
	pool := sel.Pool()
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		dep, ok := findDepartment(pool, v)
		if !ok {
			return fmt.Errorf("unknown department %q", v)
		}
		sel.Add(dep)
	}
	return nil
}

func findDepartment(pool []domain.Department, v string) (domain.Department, bool) {
	if id, err := strconv.ParseInt(v, 10, 64); err == nil {
		for _, d := range pool {
			if d.ID == id {
				return d, true
			}
		}
		return domain.Department{}, false
	}
	for _, d := range pool {
		if strings.EqualFold(d.Name, v) {
			return d, true
		}
	}
	return domain.Department{}, false
}

// selectTags adds each tag to sel, using the catalog's spelling when the tag
// exists there. With creation disabled, tags outside the catalog are
// rejected.
func selectTags(sel *combobox.Selector[string], tags []string) error {
	pool := sel.Pool()
	for _, t := range domain.UniqueStrings(tags) {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := findFold(sel.Selected(), t); ok {
			continue
		}
		if known, ok := findFold(pool, t); ok {
			t = known
		}
		if !sel.Add(t) {
			return fmt.Errorf("unknown tag %q", t)
		}
	}
	return nil
}

func findFold(values []string, v string) (string, bool) {
	for _, s := range values {
		if strings.EqualFold(s, v) {
			return s, true
		}
	}
	return "", false
}

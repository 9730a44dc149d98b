package combobox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docrepo/internal/domain"
	"docrepo/mocks"
)

// manualTimers captures scheduled closes so tests fire them explicitly.
type manualTimers struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (m *manualTimers) after(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{delay: d, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

func (m *manualTimers) fire() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, t := range pending {
		if !t.stopped {
			t.fn()
		}
	}
}

func tagCatalog(names ...string) []domain.Tag {
	tags := make([]domain.Tag, len(names))
	for i, n := range names {
		tags[i] = domain.Tag{ID: int64(i + 1), Name: n}
	}
	return tags
}

func TestSelector_FilterExcludesSelectedAndMatchesCaseInsensitive(t *testing.T) {
	s := NewTagSelector(tagCatalog("Finance", "finals", "HR", "Legal"), []string{"HR"}, false, nil)

	assert.Equal(t, []string{"Finance", "finals", "Legal"}, s.Filtered())

	s.SetQuery("  FIN ")
	assert.Equal(t, []string{"Finance", "finals"}, s.Filtered())

	s.SetQuery("hr")
	assert.Empty(t, s.Filtered())
}

func TestSelector_AddAppendsClearsQueryAndCloses(t *testing.T) {
	var changes [][]string
	s := NewTagSelector(tagCatalog("a", "b", "c"), []string{"c"}, false, func(v []string) { changes = append(changes, v) })

	s.SetQuery("b")
	require.True(t, s.IsOpen())
	assert.True(t, s.Add("b"))

	assert.Equal(t, []string{"c", "b"}, s.Selected())
	assert.Equal(t, "", s.Query())
	assert.False(t, s.IsOpen())
	assert.Equal(t, 0, s.Active())
	assert.Equal(t, [][]string{{"c", "b"}}, changes)

	// Duplicate add is a no-op and fires nothing.
	assert.False(t, s.Add("B"))
	assert.Len(t, changes, 1)
}

func TestSelector_AddOutsidePoolRequiresCreate(t *testing.T) {
	s := NewTagSelector(tagCatalog("a"), nil, false, nil)
	assert.False(t, s.Add("zzz"))
	assert.Empty(t, s.Selected())

	c := NewTagSelector(tagCatalog("a"), nil, true, nil)
	assert.True(t, c.Add("zzz"))
	assert.Equal(t, []string{"zzz"}, c.Selected())
}

func TestSelector_KeyboardNavigationClamps(t *testing.T) {
	s := NewTagSelector(tagCatalog("a", "b", "c"), nil, false, nil)

	s.MoveUp()
	assert.Equal(t, 0, s.Active())
	s.MoveDown()
	s.MoveDown()
	s.MoveDown()
	s.MoveDown()
	assert.Equal(t, 2, s.Active())
	s.MoveUp()
	assert.Equal(t, 1, s.Active())

	assert.True(t, s.Enter())
	assert.Equal(t, []string{"b"}, s.Selected())
	assert.Equal(t, 0, s.Active())
}

func TestSelector_MoveDownWithEmptyListStaysAtZero(t *testing.T) {
	s := NewTagSelector(nil, nil, false, nil)
	s.MoveDown()
	assert.Equal(t, 0, s.Active())
}

func TestSelector_EnterWithoutCreateIsNoOpOnUnknownText(t *testing.T) {
	s := NewTagSelector(tagCatalog("alpha"), nil, false, nil)
	s.SetQuery("beta")

	assert.False(t, s.Enter())
	assert.Empty(t, s.Selected())
	assert.Equal(t, "beta", s.Query())
}

func TestSelector_EnterCreatesFromTrimmedQuery(t *testing.T) {
	var got []string
	s := NewTagSelector(tagCatalog("alpha"), nil, true, func(v []string) { got = v })
	s.SetQuery("  beta  ")

	assert.True(t, s.Enter())
	assert.Equal(t, []string{"beta"}, got)
	assert.Contains(t, s.Pool(), "beta")
	assert.Equal(t, "", s.Query())
}

func TestSelector_EnterPrefersHighlightedMatchOverCreation(t *testing.T) {
	s := NewTagSelector(tagCatalog("budget", "budget-2024"), nil, true, nil)
	s.SetQuery("budget")
	s.MoveDown()

	assert.True(t, s.Enter())
	assert.Equal(t, []string{"budget-2024"}, s.Selected())
}

func TestSelector_EnterCreationRejectsBlankAndDuplicates(t *testing.T) {
	s := NewTagSelector(nil, []string{"Draft"}, true, nil)

	s.SetQuery("   ")
	assert.False(t, s.Enter())

	s.SetQuery("draft")
	assert.False(t, s.Enter())
	assert.Equal(t, []string{"Draft"}, s.Selected())
}

func TestSelector_RemoveKeepsQueryAndOpenState(t *testing.T) {
	var got []string
	s := NewTagSelector(tagCatalog("a", "b", "c"), []string{"a", "b"}, false, func(v []string) { got = v })
	s.SetQuery("c")
	s.MoveDown()

	assert.True(t, s.Remove("a"))
	assert.Equal(t, []string{"b"}, got)
	assert.Equal(t, "c", s.Query())
	assert.True(t, s.IsOpen())
	assert.Equal(t, 0, s.Active())

	assert.False(t, s.Remove("missing"))
}

func TestSelector_BlurClosesAfterDelay(t *testing.T) {
	timers := &manualTimers{}
	s := New([]string{"a", "b"}, nil, Options[string]{
		Key:       func(v string) string { return v },
		AfterFunc: timers.after,
	})

	s.Focus()
	require.True(t, s.IsOpen())
	s.Blur()
	assert.True(t, s.IsOpen(), "dropdown stays open until the delay elapses")
	require.Len(t, timers.pending, 1)
	assert.Equal(t, DefaultBlurDelay, timers.pending[0].delay)

	timers.fire()
	assert.False(t, s.IsOpen())
}

func TestSelector_OptionClickSurvivesBlur(t *testing.T) {
	timers := &manualTimers{}
	s := New([]string{"a", "b"}, nil, Options[string]{
		Key:       func(v string) string { return v },
		AfterFunc: timers.after,
	})
	s.Focus()

	// Mouse-down first, then the browser-style blur, then the click.
	s.PressOption()
	s.Blur()
	timers.fire()
	require.True(t, s.IsOpen())

	assert.True(t, s.ClickOption(1))
	assert.Equal(t, []string{"b"}, s.Selected())
}

func TestSelector_AbandonedPressHoldsOnlyOneBlur(t *testing.T) {
	timers := &manualTimers{}
	s := New([]string{"a", "b"}, nil, Options[string]{
		Key:       func(v string) string { return v },
		AfterFunc: timers.after,
	})
	s.Focus()

	// Pointer dragged off the option: no click follows the press.
	s.PressOption()
	s.Blur()
	timers.fire()
	require.True(t, s.IsOpen())

	s.Blur()
	timers.fire()
	assert.False(t, s.IsOpen())
}

func TestSelector_FocusAndCloseEndPress(t *testing.T) {
	timers := &manualTimers{}
	s := New([]string{"a"}, nil, Options[string]{
		Key:       func(v string) string { return v },
		AfterFunc: timers.after,
	})

	s.Focus()
	s.PressOption()
	s.Close()
	s.Focus()
	s.Blur()
	timers.fire()
	assert.False(t, s.IsOpen())

	s.Focus()
	s.PressOption()
	s.Focus()
	s.Blur()
	timers.fire()
	assert.False(t, s.IsOpen())
}

func TestSelector_RefocusCancelsPendingClose(t *testing.T) {
	timers := &manualTimers{}
	s := New([]string{"a"}, nil, Options[string]{
		Key:       func(v string) string { return v },
		AfterFunc: timers.after,
	})

	s.Focus()
	s.Blur()
	s.Focus()
	timers.fire()
	assert.True(t, s.IsOpen())
}

func TestSelector_RealTimerCloses(t *testing.T) {
	s := New([]string{"a"}, nil, Options[string]{
		Key:       func(v string) string { return v },
		BlurDelay: time.Millisecond,
	})
	s.Focus()
	s.Blur()
	assert.Eventually(t, func() bool { return !s.IsOpen() }, time.Second, 5*time.Millisecond)
}

func TestDepartmentSelector(t *testing.T) {
	catalog := []domain.Department{{ID: 1, Name: "Finance"}, {ID: 2, Name: "Legal"}, {ID: 3, Name: "Ops"}}
	var ids []int64
	s := NewDepartmentSelector(catalog, []int64{2, 9, 2}, func(v []int64) { ids = v })

	assert.Equal(t, []string{"Legal", "9"}, s.Chips())

	s.SetQuery("fin")
	require.Len(t, s.Filtered(), 1)
	assert.True(t, s.Enter())
	assert.Equal(t, []int64{2, 9, 1}, ids)

	assert.True(t, s.Remove(domain.Department{ID: 9}))
	assert.Equal(t, []int64{2, 1}, ids)
}

func TestCatalogSelectorsTakeBlurDelay(t *testing.T) {
	assert.Equal(t, DefaultBlurDelay, NewTagSelector(nil, nil, false, nil).BlurDelay())
	assert.Equal(t, DefaultBlurDelay, NewTagSelector(nil, nil, false, nil, WithBlurDelay(0)).BlurDelay())
	assert.Equal(t, 250*time.Millisecond, NewTagSelector(nil, nil, true, nil, WithBlurDelay(250*time.Millisecond)).BlurDelay())
	assert.Equal(t, 40*time.Millisecond, NewDepartmentSelector(nil, nil, nil, WithBlurDelay(40*time.Millisecond)).BlurDelay())
}

func TestSetSelectionDoesNotNotify(t *testing.T) {
	called := false
	s := NewTagSelector(tagCatalog("a", "b"), nil, false, func([]string) { called = true })
	s.SetSelection([]string{"b", "b", "a"})

	assert.False(t, called)
	assert.Equal(t, []string{"b", "a"}, s.Selected())
	assert.Empty(t, s.Filtered())
}

func TestLoadCatalogsDegradeToEmpty(t *testing.T) {
	api := new(mocks.MockDocumentAPI)
	api.On("ListTags", context.Background()).Return(nil, errors.New("boom"))
	api.On("ListDepartments", context.Background()).Return([]domain.Department{{ID: 1, Name: "HR"}}, nil)

	assert.Empty(t, LoadTags(context.Background(), api, zap.NewNop()))
	assert.Len(t, LoadDepartments(context.Background(), api, zap.NewNop()), 1)
	api.AssertExpectations(t)
}

// Package combobox implements the multi-select control shared by the tag and
// department editors: a chip list of selected items plus a filtering text
// input over a catalog pool.
package combobox

import (
	"strings"
	"sync"
	"time"
)

// DefaultBlurDelay is how long the dropdown stays open after the input loses
// focus, so a click on an option still lands.
const DefaultBlurDelay = 100 * time.Millisecond

// Timer is the cancellable handle returned by Options.AfterFunc.
type Timer interface {
	Stop() bool
}

// Options configure a Selector.
type Options[T any] struct {
	// Key returns the comparison key of an item. Keys are compared
	// case-insensitively.
	Key func(T) string
	// Label is the chip and option text. Defaults to Key.
	Label func(T) string
	// Match is the text the query is matched against. Defaults to Key.
	Match func(T) string
	// Create builds a new item from typed text. A nil Create disables
	// creation: only pool entries can be committed.
	Create func(text string) T
	// OnChange receives a copy of the selection after every change made
	// through the selector.
	OnChange func([]T)
	// BlurDelay defaults to DefaultBlurDelay.
	BlurDelay time.Duration
	// AfterFunc schedules the delayed close. Defaults to time.AfterFunc.
	AfterFunc func(time.Duration, func()) Timer
}

// Selector is safe for concurrent use; the delayed close runs on its own
// goroutine.
type Selector[T any] struct {
	mu   sync.Mutex
	opts Options[T]

	pool     []T
	selected []T
	query    string
	open     bool
	active   int
	pressing bool

	closeTimer Timer
	blurSeq    uint64
}

// New creates a selector over pool with an initial selection.
func New[T any](pool, selected []T, opts Options[T]) *Selector[T] {
	if opts.Key == nil {
		panic("combobox: Options.Key is required")
	}
	if opts.Label == nil {
		opts.Label = opts.Key
	}
	if opts.Match == nil {
		opts.Match = opts.Key
	}
	if opts.BlurDelay <= 0 {
		opts.BlurDelay = DefaultBlurDelay
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	s := &Selector[T]{opts: opts}
	s.pool = s.dedupe(pool)
	s.selected = s.dedupe(selected)
	return s
}

func (s *Selector[T]) norm(item T) string {
	return strings.ToLower(strings.TrimSpace(s.opts.Key(item)))
}

func (s *Selector[T]) dedupe(items []T) []T {
	out := make([]T, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		k := s.norm(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

func (s *Selector[T]) indexIn(items []T, key string) int {
	for i, it := range items {
		if s.norm(it) == key {
			return i
		}
	}
	return -1
}

// BlurDelay returns how long a blurred dropdown stays open.
func (s *Selector[T]) BlurDelay() time.Duration {
	return s.opts.BlurDelay
}

// AllowCreate reports whether typed text can become a new item.
func (s *Selector[T]) AllowCreate() bool {
	return s.opts.Create != nil
}

// SetPool replaces the candidate pool, e.g. once the catalog has loaded.
func (s *Selector[T]) SetPool(pool []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool = s.dedupe(pool)
	s.clampActive()
}

// Pool returns a copy of the candidate pool.
func (s *Selector[T]) Pool() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.pool...)
}

// SetSelection replaces the selection without firing OnChange. It is how the
// owner pushes its state back in.
func (s *Selector[T]) SetSelection(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = s.dedupe(items)
	s.clampActive()
}

// Selected returns a copy of the selection in order of addition.
func (s *Selector[T]) Selected() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.selected...)
}

// Chips returns the labels of the selected items.
func (s *Selector[T]) Chips() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.selected))
	for i, it := range s.selected {
		out[i] = s.opts.Label(it)
	}
	return out
}

// Query returns the current input text.
func (s *Selector[T]) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// IsOpen reports whether the dropdown is shown.
func (s *Selector[T]) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Active returns the highlighted index into Filtered.
func (s *Selector[T]) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Filtered returns the pool minus the selection, narrowed to items whose
// match text contains the trimmed query, ignoring case.
func (s *Selector[T]) Filtered() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered()
}

func (s *Selector[T]) filtered() []T {
	q := strings.ToLower(strings.TrimSpace(s.query))
	out := make([]T, 0, len(s.pool))
	for _, it := range s.pool {
		if s.indexIn(s.selected, s.norm(it)) >= 0 {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(s.opts.Match(it)), q) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (s *Selector[T]) clampActive() {
	n := len(s.filtered())
	if s.active > n-1 {
		s.active = n - 1
	}
	if s.active < 0 {
		s.active = 0
	}
}

// SetQuery updates the input text and opens the dropdown.
func (s *Selector[T]) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
	s.open = true
	s.clampActive()
}

// Focus opens the dropdown and cancels a pending blur close.
func (s *Selector[T]) Focus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelClose()
	s.pressing = false
	s.open = true
}

// Blur schedules the dropdown to close after the blur delay. The first blur
// after an option press is swallowed so the click still lands; it also ends
// the press, so a press that never turns into a click holds only one blur.
func (s *Selector[T]) Blur() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pressing {
		s.pressing = false
		return
	}
	s.cancelClose()
	s.blurSeq++
	seq := s.blurSeq
	s.closeTimer = s.opts.AfterFunc(s.opts.BlurDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.blurSeq == seq {
			s.open = false
			s.closeTimer = nil
		}
	})
}

// Close hides the dropdown immediately.
func (s *Selector[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelClose()
	s.pressing = false
	s.open = false
}

func (s *Selector[T]) cancelClose() {
	s.blurSeq++
	if s.closeTimer != nil {
		s.closeTimer.Stop()
		s.closeTimer = nil
	}
}

// MoveDown advances the highlight, stopping at the last option.
func (s *Selector[T]) MoveDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active++
	s.clampActive()
}

// MoveUp moves the highlight back, stopping at the first option.
func (s *Selector[T]) MoveUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active > 0 {
		s.active--
	}
}

// PressOption is the mouse-down on an option. It keeps the input focused so
// the following click is not lost to a blur close.
func (s *Selector[T]) PressOption() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pressing = true
	s.cancelClose()
}

// ClickOption commits the i-th filtered option. It reports whether an item
// was committed.
func (s *Selector[T]) ClickOption(i int) bool {
	s.mu.Lock()
	s.pressing = false
	f := s.filtered()
	if i < 0 || i >= len(f) {
		s.mu.Unlock()
		return false
	}
	changed, sel := s.add(f[i])
	s.mu.Unlock()
	s.notify(changed, sel)
	return changed
}

// Enter commits the highlighted option. With no match it creates an item
// from the trimmed query when creation is enabled and the text is neither
// blank nor already selected. It reports whether an item was committed.
func (s *Selector[T]) Enter() bool {
	s.mu.Lock()
	f := s.filtered()
	if s.active >= 0 && s.active < len(f) {
		changed, sel := s.add(f[s.active])
		s.mu.Unlock()
		s.notify(changed, sel)
		return changed
	}
	if s.opts.Create == nil {
		s.mu.Unlock()
		return false
	}
	text := strings.TrimSpace(s.query)
	if text == "" {
		s.mu.Unlock()
		return false
	}
	item := s.opts.Create(text)
	key := s.norm(item)
	if s.indexIn(s.selected, key) >= 0 {
		s.mu.Unlock()
		return false
	}
	if s.indexIn(s.pool, key) < 0 {
		s.pool = append(s.pool, item)
	}
	changed, sel := s.add(item)
	s.mu.Unlock()
	s.notify(changed, sel)
	return changed
}

// Add commits item. Already-selected items are ignored, as are items outside
// the pool when creation is disabled.
func (s *Selector[T]) Add(item T) bool {
	s.mu.Lock()
	changed, sel := s.add(item)
	s.mu.Unlock()
	s.notify(changed, sel)
	return changed
}

func (s *Selector[T]) add(item T) (bool, []T) {
	key := s.norm(item)
	if s.indexIn(s.selected, key) >= 0 {
		return false, nil
	}
	if s.opts.Create == nil && s.indexIn(s.pool, key) < 0 {
		return false, nil
	}
	s.selected = append(s.selected, item)
	s.query = ""
	s.open = false
	s.active = 0
	s.cancelClose()
	return true, append([]T(nil), s.selected...)
}

// Remove drops item from the selection. The query and dropdown state are
// left alone.
func (s *Selector[T]) Remove(item T) bool {
	s.mu.Lock()
	i := s.indexIn(s.selected, s.norm(item))
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.selected = append(s.selected[:i:i], s.selected[i+1:]...)
	s.active = 0
	sel := append([]T(nil), s.selected...)
	s.mu.Unlock()
	s.notify(true, sel)
	return true
}

func (s *Selector[T]) notify(changed bool, sel []T) {
	if changed && s.opts.OnChange != nil {
		s.opts.OnChange(sel)
	}
}

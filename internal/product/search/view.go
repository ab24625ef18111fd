package search

import (
	"strings"
	"sync"
	"time"

	"github.com/abgdnv/catalog/internal/product/model"
	"github.com/abgdnv/catalog/internal/product/store"
)

// Result is one rendering of the product list.
type Result struct {
	Query    string          `json:"query"`
	Products []model.Product `json:"products"`
	Visible  int             `json:"visible"`
	Total    int             `json:"total"`
	Summary  string          `json:"summary"`
}

// Render filters all by query, sorts the matches and summarizes the counts.
func Render(all []model.Product, query string, column Column, order Order) Result {
	visible := Sort(Filter(all, query), column, order)
	return Result{
		Query:    query,
		Products: visible,
		Visible:  len(visible),
		Total:    len(all),
		Summary:  CountText(len(visible), len(all), strings.TrimSpace(query) != ""),
	}
}

// Source is the part of the store a View needs.
type Source interface {
	Subscribe(l store.Listener) (unsubscribe func())
}

// View keeps a filtered, sorted list in sync with the store.
// Query edits are debounced; store changes re-filter immediately with the
// query as currently typed.
type View struct {
	notifyMu sync.Mutex // orders refresh and onChange calls

	mu          sync.RWMutex
	all         []model.Product
	query       string
	filterQuery string
	column      Column
	order       Order
	result      Result

	onChange    func(Result)
	debouncer   *Debouncer
	unsubscribe func()
}

// NewView subscribes to source. onChange, if not nil, is called after every
// refresh and may read the View but must not block for long.
func NewView(source Source, debounce time.Duration, onChange func(Result)) *View {
	v := &View{
		order:    Asc,
		onChange: onChange,
	}
	v.debouncer = NewDebouncer(debounce, v.applyQuery)
	v.unsubscribe = source.Subscribe(v.onSnapshot)
	return v
}

// SetQuery records the typed query and schedules a debounced filter pass.
func (v *View) SetQuery(query string) {
	v.mu.Lock()
	v.query = query
	v.mu.Unlock()
	v.debouncer.Push(query)
}

// ApplyQuery sets the query and filters with it immediately, skipping the
// debounce. A pending typed query is dropped.
func (v *View) ApplyQuery(query string) {
	v.mu.Lock()
	v.query = query
	v.mu.Unlock()
	v.debouncer.Deliver(query)
}

// SetSort re-sorts the visible list immediately.
func (v *View) SetSort(column Column, order Order) {
	v.mu.Lock()
	v.column = column
	v.order = order
	v.mu.Unlock()
	v.refresh()
}

// Query returns the query as currently typed.
func (v *View) Query() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.query
}

// Result returns the latest rendering.
func (v *View) Result() Result {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.result
}

// Close stops listening to the store and drops any pending query.
func (v *View) Close() {
	v.debouncer.Stop()
	v.unsubscribe()
}

func (v *View) onSnapshot(products []model.Product) {
	v.mu.Lock()
	v.all = products
	v.filterQuery = v.query
	applied := v.filterQuery
	v.mu.Unlock()
	v.debouncer.Mark(applied)
	v.refresh()
}

func (v *View) applyQuery(query string) {
	v.mu.Lock()
	v.filterQuery = query
	v.mu.Unlock()
	v.refresh()
}

func (v *View) refresh() {
	v.notifyMu.Lock()
	defer v.notifyMu.Unlock()

	v.mu.Lock()
	result := Render(v.all, v.filterQuery, v.column, v.order)
	// the count follows what is typed, the rows follow the last applied query
	result.Query = v.query
	result.Summary = CountText(result.Visible, result.Total, strings.TrimSpace(v.query) != "")
	v.result = result
	v.mu.Unlock()

	if v.onChange != nil {
		v.onChange(result)
	}
}

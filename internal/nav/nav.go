// Package nav routes between dashboard pages. Screens ask for a page change through a
// Navigator instead of switching views themselves.
package nav

import (
	"maps"

	"go.uber.org/zap"

	"github.com/jask/kilowatt/internal/prefs"
)

// Page identifies a screen.
type Page string

const (
	PageHome          Page = "home"
	PageAccounts      Page = "accounts"
	PageAccountDetail Page = "account-detail"
	PageProviders     Page = "providers"
	PageManagers      Page = "managers"
	PageCommissions   Page = "commissions"
	PageTasks         Page = "tasks"
)

// Pages lists the top-level pages in menu order.
var Pages = []Page{PageHome, PageAccounts, PageProviders, PageManagers, PageCommissions, PageTasks}

// ParsePage validates a page identifier.
func ParsePage(s string) (Page, bool) {
	p := Page(s)
	if p == PageAccountDetail {
		return p, true
	}
	for _, known := range Pages {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// NeedsParams reports whether the page cannot be shown without parameters.
func (p Page) NeedsParams() bool { return p == PageAccountDetail }

// Navigator receives page change requests.
type Navigator interface {
	RequestNavigation(page Page, params map[string]string)
}

// Entry is one visited page.
type Entry struct {
	Page   Page
	Params map[string]string
}

const currentPageKey = "current_page"

// Router implements Navigator with a back stack and persists the current page.
type Router struct {
	store   prefs.Store
	log     *zap.Logger
	current Entry
	history []Entry
}

// NewRouter restores the persisted page, falling back when it is missing, unknown or
// needs parameters that were not saved.
func NewRouter(store prefs.Store, fallback Page, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{store: store, log: log, current: Entry{Page: fallback}}
	if store == nil {
		return r
	}
	saved, ok, err := store.Get(currentPageKey)
	if err != nil {
		log.Warn("restore page", zap.Error(err))
		return r
	}
	if !ok {
		return r
	}
	if p, valid := ParsePage(saved); valid && !p.NeedsParams() {
		r.current = Entry{Page: p}
	}
	return r
}

// RequestNavigation switches pages, pushing the current one on the back stack.
func (r *Router) RequestNavigation(page Page, params map[string]string) {
	if page == r.current.Page && maps.Equal(params, r.current.Params) {
		return
	}
	r.history = append(r.history, r.current)
	r.current = Entry{Page: page, Params: maps.Clone(params)}
	r.log.Debug("navigate", zap.String("page", string(page)), zap.Any("params", params))
	r.persist()
}

// Back returns to the previous page. It reports false when the stack is empty.
func (r *Router) Back() bool {
	if len(r.history) == 0 {
		return false
	}
	r.current = r.history[len(r.history)-1]
	r.history = r.history[:len(r.history)-1]
	r.persist()
	return true
}

// Current returns the active page and a copy of its parameters.
func (r *Router) Current() Entry {
	return Entry{Page: r.current.Page, Params: maps.Clone(r.current.Params)}
}

// Depth returns the back stack size.
func (r *Router) Depth() int { return len(r.history) }

func (r *Router) persist() {
	if r.store == nil {
		return
	}
	if err := r.store.Set(currentPageKey, string(r.current.Page)); err != nil {
		r.log.Warn("persist page", zap.Error(err))
	}
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(page Page, params map[string]string)

func (f NavigatorFunc) RequestNavigation(page Page, params map[string]string) { f(page, params) }

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/kilowatt/internal/boundary"
	"github.com/jask/kilowatt/internal/catalog"
	"github.com/jask/kilowatt/internal/config"
	"github.com/jask/kilowatt/internal/filter"
	"github.com/jask/kilowatt/internal/nav"
	"github.com/jask/kilowatt/internal/record"
	"github.com/jask/kilowatt/internal/service"
	"github.com/jask/kilowatt/internal/wizard"
)

// App ties together views.
type App struct {
	ctx      context.Context
	cfg      config.Config
	services Services
	router   *nav.Router
	log      *zap.Logger

	loader *boundary.Boundary
	latest atomic.Pointer[service.Snapshot]
	snap   service.Snapshot
	loaded bool

	lists  map[nav.Page]*listState
	modal  modalState
	search string
	facets facetState
	form   *formState
	status string
}

type Services struct {
	Dashboard  *service.Dashboard
	Accounts   *service.AccountService
	Providers  *service.ProviderService
	Managers   *service.ManagerService
	Automation *service.Automation
}

type modalState string

const (
	modalNone   modalState = ""
	modalSearch modalState = "search"
	modalFacets modalState = "facets"
	modalForm   modalState = "form"
)

// listState is one list screen: the collection it shows and its filter view.
type listState struct {
	coll   catalog.Collection
	view   *filter.View
	cursor int
}

func (l *listState) selected() (record.Record, bool) {
	rows := l.view.Rows()
	if l.cursor < 0 || l.cursor >= len(rows) {
		return nil, false
	}
	return rows[l.cursor], true
}

func (l *listState) clamp() {
	n := len(l.view.Rows())
	if l.cursor >= n {
		l.cursor = n - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func New(ctx context.Context, cfg config.Config, services Services, router *nav.Router, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{
		ctx:      ctx,
		cfg:      cfg,
		services: services,
		router:   router,
		log:      log,
		loader:   boundary.New("dashboard", log),
		lists:    map[nav.Page]*listState{},
	}
	for _, c := range catalog.All {
		a.lists[c.Page] = &listState{coll: c, view: filter.NewView(c.Engine(), nil)}
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return a.loadCmd()
}

func (a *App) load(ctx context.Context) error {
	snap, err := a.services.Dashboard.Load(ctx)
	if err != nil {
		return err
	}
	a.latest.Store(&snap)
	return nil
}

func (a *App) loadCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.loader.Run(a.ctx, a.load); err != nil {
			return loadFailedMsg{err}
		}
		return snapshotMsg(*a.latest.Load())
	}
}

func (a *App) retryCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.loader.Retry(a.ctx); err != nil {
			return loadFailedMsg{err}
		}
		return snapshotMsg(*a.latest.Load())
	}
}

func (a *App) automationCmd(task record.Record) tea.Cmd {
	id, action, account := task.Text("id"), task.Text("action"), task.Text("account_name")
	return func() tea.Msg {
		err := a.services.Automation.Run(a.ctx, id, action)
		return automationDoneMsg{action: action, account: account, err: err}
	}
}

func (a *App) currentList() *listState {
	return a.lists[a.router.Current().Page]
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.modal {
		case modalSearch:
			return a.handleSearchKey(m)
		case modalFacets:
			return a.handleFacetKey(m)
		case modalForm:
			return a.handleFormKey(m)
		}
		return a.handleKey(m)
	case snapshotMsg:
		a.applySnapshot(service.Snapshot(m))
	case loadFailedMsg:
		a.status = "load failed: " + m.Error() + " ([R] retry)"
	case submitDoneMsg:
		return a.finishSubmit(m)
	case automationDoneMsg:
		if m.err != nil {
			a.status = fmt.Sprintf("%s for %s failed: %v", m.action, m.account, m.err)
			return a, nil
		}
		a.status = fmt.Sprintf("%s for %s done", m.action, m.account)
		return a, a.loadCmd()
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) applySnapshot(s service.Snapshot) {
	a.snap = s
	a.loaded = true
	sources := map[nav.Page][]record.Record{
		nav.PageAccounts:    s.Accounts,
		nav.PageProviders:   s.Providers,
		nav.PageManagers:    s.Managers,
		nav.PageCommissions: s.Commissions,
		nav.PageTasks:       s.Tasks,
	}
	for page, rows := range sources {
		l := a.lists[page]
		l.view.SetSource(rows)
		l.clamp()
	}
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := a.router.Current().Page
	list := a.currentList()
	key := m.String()

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		if i := int(key[0] - '1'); i < len(nav.Pages) {
			a.router.RequestNavigation(nav.Pages[i], nil)
			a.status = ""
		}
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "esc", "b":
		a.router.Back()
		return a, nil
	case "R":
		if a.loader.Failed() {
			a.status = "retrying..."
			return a, a.retryCmd()
		}
		return a, a.loadCmd()
	}

	if list == nil {
		return a, nil
	}
	switch key {
	case "up", "k":
		if list.cursor > 0 {
			list.cursor--
		}
	case "down", "j":
		if list.cursor < len(list.view.Rows())-1 {
			list.cursor++
		}
	case "/":
		a.modal = modalSearch
		a.search = list.view.Filter.Search
	case "f":
		if len(list.coll.Facets) > 0 {
			a.modal = modalFacets
			a.facets = facetState{}
		}
	case "x":
		list.view.Filter.Clear()
		list.clamp()
		a.status = "filters cleared"
	case "s":
		next := list.coll.NextSort(list.view.Sort.Field)
		if next == "" {
			list.view.Sort = filter.SortState{}
		} else {
			list.view.Sort = filter.SortState{Field: next, Dir: filter.Ascending}
		}
	case "o":
		if list.view.Sort.Field != "" {
			list.view.ToggleSort(list.view.Sort.Field)
		}
	case "a", "m", "e":
		if page == nav.PageCommissions {
			list.view.ToggleSort(commissionSortKeys[key])
		}
	case "n":
		if list.coll.Form != "" {
			return a, a.openForm(list.coll)
		}
	case "enter":
		if page == nav.PageAccounts {
			if rec, ok := list.selected(); ok {
				a.router.RequestNavigation(nav.PageAccountDetail, map[string]string{"id": rec.Text("id")})
			}
		}
	case "r":
		if page == nav.PageTasks && a.services.Automation != nil {
			if rec, ok := list.selected(); ok {
				a.status = fmt.Sprintf("running %s for %s...", rec.Text("action"), rec.Text("account_name"))
				return a, a.automationCmd(rec)
			}
		}
	}
	return a, nil
}

// commissionSortKeys are the column shortcuts on the commissions page.
var commissionSortKeys = map[string]string{
	"a": "account_name",
	"m": "commission_amount",
	"e": "contract_expiration",
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := a.currentList()
	switch m.Type {
	case tea.KeyEsc:
		a.search = ""
		a.modal = modalNone
	case tea.KeyEnter:
		a.modal = modalNone
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if r := []rune(a.search); len(r) > 0 {
			a.search = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		a.search += " "
	case tea.KeyRunes:
		a.search += string(m.Runes)
	}
	if list != nil {
		list.view.Filter.Search = a.search
		list.cursor = 0
	}
	return a, nil
}

func (a *App) View() string {
	var body string
	entry := a.router.Current()
	switch entry.Page {
	case nav.PageHome:
		body = a.renderHome()
	case nav.PageAccountDetail:
		body = a.renderAccountDetail(entry.Params["id"])
	default:
		if l := a.lists[entry.Page]; l != nil {
			body = a.renderList(l)
		}
	}
	out := a.renderTabs(entry.Page) + "\n\n" + body
	switch a.modal {
	case modalSearch:
		out += "\n\n" + modalStyle.Render("Search: "+a.search+"_\n[enter] Keep  [esc] Clear")
	case modalFacets:
		out += "\n\n" + a.renderFacets()
	case modalForm:
		out += "\n\n" + a.renderForm()
	}
	if err := a.loader.Err(); err != nil {
		out += "\n" + errorStyle.Render("Could not load data: "+err.Error()+"  [R] Retry")
	}
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderTabs(current nav.Page) string {
	var tabs []string
	for i, p := range nav.Pages {
		label := fmt.Sprintf("%d %s", i+1, pageTitle(p))
		if p == current || (current == nav.PageAccountDetail && p == nav.PageAccounts) {
			tabs = append(tabs, activeTab.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return strings.Join(tabs, "")
}

func pageTitle(p nav.Page) string {
	switch p {
	case nav.PageHome:
		return "Home"
	case nav.PageAccountDetail:
		return "Account"
	default:
		s := string(p)
		return strings.ToUpper(s[:1]) + s[1:]
	}
}

type snapshotMsg service.Snapshot

type loadFailedMsg struct{ error }

type submitDoneMsg struct {
	w   *wizard.Wizard
	err error
}

type automationDoneMsg struct {
	action  string
	account string
	err     error
}

type errMsg struct{ error }

// isValidation reports whether err only rejected the current step's input.
func isValidation(err error) bool {
	return errors.Is(err, wizard.ErrValidation)
}

// Package catalog describes the list screens: which fields are searchable, which can be
// faceted, which sort, and how columns render. The TUI and the CLI share it.
package catalog

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/jask/kilowatt/internal/filter"
	"github.com/jask/kilowatt/internal/nav"
	"github.com/jask/kilowatt/internal/record"
)

// Format selects how a column renders its value.
type Format int

const (
	Text Format = iota
	Money
	Energy
	Percent
)

// Column is one table column.
type Column struct {
	Field  string
	Title  string
	Width  int
	Format Format
}

// Render formats the column value of r. Blank values render as filter.UnassignedLabel for
// text columns and "-" otherwise.
func (c Column) Render(r record.Record, currency string) string {
	if r.Blank(c.Field) {
		if c.Format == Text {
			return filter.UnassignedLabel
		}
		return "-"
	}
	if c.Format == Text {
		return r.Text(c.Field)
	}
	f, ok := r.Number(c.Field)
	if !ok {
		return r.Text(c.Field)
	}
	return FormatNumber(f, c.Format, currency)
}

// FormatNumber renders f as money, energy or a percentage.
func FormatNumber(f float64, format Format, currency string) string {
	switch format {
	case Money:
		if f == math.Trunc(f) {
			return currency + humanize.Comma(int64(f))
		}
		return currency + humanize.CommafWithDigits(f, 2)
	case Energy:
		return humanize.Comma(int64(math.Round(f))) + " kWh"
	case Percent:
		return humanize.FtoaWithDigits(f*100, 2) + "%"
	default:
		return humanize.Ftoa(f)
	}
}

// Collection describes one list screen.
type Collection struct {
	Name       string
	Page       nav.Page
	Searchable []string
	Facets     []string
	SortFields []string
	Columns    []Column
	// Form is the data-entry form kind that creates rows, empty when read-only.
	Form string
}

// Engine builds the filter engine for the collection.
func (c Collection) Engine() *filter.Engine {
	return filter.NewEngine(c.Searchable...)
}

// NextSort cycles to the next sortable field after current, wrapping to no sort.
func (c Collection) NextSort(current string) string {
	if current == "" {
		if len(c.SortFields) == 0 {
			return ""
		}
		return c.SortFields[0]
	}
	for i, f := range c.SortFields {
		if f == current && i+1 < len(c.SortFields) {
			return c.SortFields[i+1]
		}
	}
	return ""
}

// HasSort reports whether field is sortable.
func (c Collection) HasSort(field string) bool {
	for _, f := range c.SortFields {
		if f == field {
			return true
		}
	}
	return false
}

// HasFacet reports whether field can be faceted.
func (c Collection) HasFacet(field string) bool {
	for _, f := range c.Facets {
		if f == field {
			return true
		}
	}
	return false
}

var (
	Accounts = Collection{
		Name:       "accounts",
		Page:       nav.PageAccounts,
		Searchable: []string{"name", "customer_name"},
		Facets:     []string{"status", "account_type", "manager"},
		SortFields: []string{"name", "monthly_usage_kwh", "monthly_bill", "last_activity"},
		Columns: []Column{
			{Field: "name", Title: "Account", Width: 22},
			{Field: "customer_name", Title: "Customer", Width: 18},
			{Field: "account_type", Title: "Type", Width: 12},
			{Field: "status", Title: "Status", Width: 9},
			{Field: "manager", Title: "Manager", Width: 15},
			{Field: "monthly_usage_kwh", Title: "Usage", Width: 12, Format: Energy},
			{Field: "monthly_bill", Title: "Bill", Width: 10, Format: Money},
		},
		Form: "account",
	}
	Providers = Collection{
		Name:       "providers",
		Page:       nav.PageProviders,
		Searchable: []string{"name", "contact", "type"},
		Facets:     []string{"type", "active", "payment_terms"},
		SortFields: []string{"name", "commission_rate"},
		Columns: []Column{
			{Field: "name", Title: "Provider", Width: 18},
			{Field: "type", Title: "Type", Width: 12},
			{Field: "contact", Title: "Contact", Width: 15},
			{Field: "payment_terms", Title: "Terms", Width: 8},
			{Field: "commission_rate", Title: "Rate", Width: 7, Format: Percent},
			{Field: "active", Title: "Status", Width: 9},
		},
		Form: "provider",
	}
	Managers = Collection{
		Name:       "managers",
		Page:       nav.PageManagers,
		Searchable: []string{"name", "company", "office"},
		Facets:     []string{"status", "company"},
		SortFields: []string{"name", "company"},
		Columns: []Column{
			{Field: "name", Title: "Manager", Width: 16},
			{Field: "company", Title: "Company", Width: 24},
			{Field: "office", Title: "Office", Width: 10},
			{Field: "email", Title: "Email", Width: 26},
			{Field: "status", Title: "Status", Width: 9},
		},
		Form: "manager",
	}
	Commissions = Collection{
		Name:       "commissions",
		Page:       nav.PageCommissions,
		Searchable: []string{"account_name", "manager", "provider"},
		Facets:     []string{"status", "manager", "provider"},
		SortFields: []string{"account_name", "commission_amount", "contract_expiration"},
		Columns: []Column{
			{Field: "account_name", Title: "Account", Width: 20},
			{Field: "manager", Title: "Manager", Width: 15},
			{Field: "provider", Title: "Provider", Width: 15},
			{Field: "commission_amount", Title: "Amount", Width: 10, Format: Money},
			{Field: "status", Title: "Status", Width: 8},
			{Field: "contract_expiration", Title: "Expires", Width: 11},
		},
	}
	Tasks = Collection{
		Name:       "tasks",
		Page:       nav.PageTasks,
		Searchable: []string{"title", "account_name"},
		Facets:     []string{"priority", "status", "action"},
		SortFields: []string{"due", "priority", "title"},
		Columns: []Column{
			{Field: "title", Title: "Task", Width: 26},
			{Field: "account_name", Title: "Account", Width: 20},
			{Field: "action", Title: "Action", Width: 14},
			{Field: "priority", Title: "Priority", Width: 8},
			{Field: "status", Title: "Status", Width: 6},
			{Field: "due", Title: "Due", Width: 11},
		},
	}
)

// All lists the collections in menu order.
var All = []Collection{Accounts, Providers, Managers, Commissions, Tasks}

// ForPage returns the collection shown on page.
func ForPage(p nav.Page) (Collection, bool) {
	for _, c := range All {
		if c.Page == p {
			return c, true
		}
	}
	return Collection{}, false
}

// Lookup finds a collection by name.
func Lookup(name string) (Collection, error) {
	for _, c := range All {
		if c.Name == name {
			return c, nil
		}
	}
	return Collection{}, fmt.Errorf("unknown collection %q", name)
}

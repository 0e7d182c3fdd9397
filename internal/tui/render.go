package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jask/kilowatt/internal/catalog"
	"github.com/jask/kilowatt/internal/filter"
	"github.com/jask/kilowatt/internal/nav"
	"github.com/jask/kilowatt/internal/record"
)

func cell(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}

func (a *App) renderList(l *listState) string {
	out := titleStyle.Render(pageTitle(l.coll.Page)) + "\n"
	if !a.loaded {
		return out + dimStyle.Render("loading...")
	}
	var header []string
	for _, c := range l.coll.Columns {
		title := c.Title
		if l.view.Sort.Field == c.Field {
			if l.view.Sort.Dir == filter.Ascending {
				title += " ↑"
			} else {
				title += " ↓"
			}
		}
		header = append(header, cell(title, c.Width))
	}
	out += "  " + headerStyle.Render(strings.Join(header, " ")) + "\n"

	rows := l.view.Rows()
	if len(rows) == 0 {
		out += dimStyle.Render("  no rows match") + "\n"
	}
	for i, r := range rows {
		var cells []string
		for _, c := range l.coll.Columns {
			cells = append(cells, cell(c.Render(r, a.cfg.UI.CurrencySymbol), c.Width))
		}
		line := strings.Join(cells, " ")
		if i == l.cursor {
			out += selectedStyle.Render("▶ "+line) + "\n"
		} else {
			out += "  " + line + "\n"
		}
	}

	out += dimStyle.Render(a.describeView(l, len(rows))) + "\n"
	help := "[/] Search  [f] Filter  [x] Clear  [s] Sort  [o] Order"
	switch l.coll.Page {
	case nav.PageAccounts:
		help += "  [enter] Details"
	case nav.PageCommissions:
		help += "  [a] Account  [m] Amount  [e] Expiration"
	case nav.PageTasks:
		help += "  [r] Run action"
	}
	if l.coll.Form != "" {
		help += "  [n] New"
	}
	return out + help + "  [q] Quit"
}

func (a *App) describeView(l *listState, shown int) string {
	parts := []string{fmt.Sprintf("%d of %d", shown, len(l.view.Source))}
	if s := l.view.Filter.Search; s != "" {
		parts = append(parts, fmt.Sprintf("search %q", s))
	}
	fields := make([]string, 0, len(l.view.Filter.Categories))
	for f := range l.view.Filter.Categories {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		values := l.view.Filter.Categories[f].Values()
		for i, v := range values {
			values[i] = filter.Label(v)
		}
		parts = append(parts, f+"="+strings.Join(values, "|"))
	}
	if l.view.Sort.Field != "" {
		parts = append(parts, "sort "+l.view.Sort.Field+" "+l.view.Sort.Dir.String())
	}
	return strings.Join(parts, "  ")
}

func (a *App) renderHome() string {
	title := titleStyle.Render("Kilowatt Dashboard")
	if !a.loaded {
		return title + "\n" + dimStyle.Render("loading...")
	}
	s := a.snap.Summary
	cur := a.cfg.UI.CurrencySymbol
	body := fmt.Sprintf("Accounts: %d  Providers: %d  Managers: %d  Open tasks: %d",
		len(a.snap.Accounts), len(a.snap.Providers), len(a.snap.Managers), s.OpenTasks)
	body += "\nMonthly usage: " + catalog.FormatNumber(s.MonthlyUsageKWh, catalog.Energy, cur)
	body += "\nCommissions: " + catalog.FormatNumber(s.CommissionTotal, catalog.Money, cur)

	statuses := make([]string, 0, len(s.CommissionByState))
	for k := range s.CommissionByState {
		statuses = append(statuses, k)
	}
	sort.Strings(statuses)
	for _, k := range statuses {
		body += fmt.Sprintf("\n- %-10s %s", k, catalog.FormatNumber(s.CommissionByState[k], catalog.Money, cur))
	}

	body += "\nAccounts by status:"
	statuses = statuses[:0]
	for k := range s.AccountsByStatus {
		statuses = append(statuses, k)
	}
	sort.Strings(statuses)
	for _, k := range statuses {
		body += fmt.Sprintf("\n- %-10s %d", k, s.AccountsByStatus[k])
	}
	body += "\n[1-6] Pages  [R] Reload  [q] Quit"
	return title + "\n" + body
}

func (a *App) findAccount(id string) (record.Record, bool) {
	for _, r := range a.snap.Accounts {
		if r.Text("id") == id {
			return r, true
		}
	}
	return nil, false
}

func (a *App) renderAccountDetail(id string) string {
	rec, ok := a.findAccount(id)
	if !ok {
		return titleStyle.Render("Account") + "\n" + dimStyle.Render("account not found") + "\n[esc] Back"
	}
	cur := a.cfg.UI.CurrencySymbol
	out := titleStyle.Render(rec.Text("name")) + "\n"
	lines := [][2]string{
		{"Customer", rec.Text("customer_name")},
		{"Type", rec.Text("account_type")},
		{"Status", rec.Text("status")},
		{"Manager", catalog.Column{Field: "manager"}.Render(rec, cur)},
		{"Provider", catalog.Column{Field: "provider"}.Render(rec, cur)},
		{"Email", rec.Text("email")},
		{"Phone", rec.Text("phone")},
		{"Address", rec.Text("address")},
		{"Usage", catalog.Column{Field: "monthly_usage_kwh", Format: catalog.Energy}.Render(rec, cur)},
		{"Bill", catalog.Column{Field: "monthly_bill", Format: catalog.Money}.Render(rec, cur)},
		{"Last activity", rec.Text("last_activity")},
		{"Notes", rec.Text("notes")},
	}
	for _, l := range lines {
		out += fmt.Sprintf("%-14s %s\n", l[0]+":", l[1])
	}
	out += headerStyle.Render("Commissions") + "\n"
	found := false
	for _, c := range a.snap.Commissions {
		if c.Text("account_name") != rec.Text("name") {
			continue
		}
		found = true
		out += fmt.Sprintf("- %s  %s  %s\n",
			catalog.Column{Field: "commission_amount", Format: catalog.Money}.Render(c, cur),
			c.Text("status"), c.Text("contract_expiration"))
	}
	if !found {
		out += dimStyle.Render("none") + "\n"
	}
	return out + "[esc] Back  [q] Quit"
}

package repository

import (
	"github.com/jask/kilowatt/internal/record"
)

// Account represents an account row.
type Account struct {
	ID              string
	Name            string
	CustomerName    string
	AccountType     string
	Status          string
	Manager         *string
	Provider        *string
	Email           string
	Phone           string
	Address         string
	Notes           string
	MonthlyUsageKWh float64
	MonthlyBill     float64
	LastActivity    string
}

// Provider represents a retail electric provider row.
type Provider struct {
	ID             string
	Name           string
	Type           string
	Contact        string
	Email          string
	Phone          string
	PaymentTerms   string
	CommissionRate float64
	Notes          string
	Active         bool
}

// Manager represents a property manager row.
type Manager struct {
	ID      string
	Name    string
	Company string
	Office  string
	Email   string
	Phone   string
	Status  string
	Notes   string
}

// Commission represents a commission schedule row.
type Commission struct {
	ID                 string
	AccountName        string
	Manager            *string
	Provider           string
	Amount             float64
	Status             string
	ContractExpiration string
}

// Task represents a queued automation task.
type Task struct {
	ID          string
	Title       string
	AccountName string
	Action      string
	Status      string
	Priority    string
	Due         string
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// Record exposes the row to list filtering.
func (a Account) Record() record.Record {
	return record.Record{
		"id":                a.ID,
		"name":              a.Name,
		"customer_name":     a.CustomerName,
		"account_type":      a.AccountType,
		"status":            a.Status,
		"manager":           optional(a.Manager),
		"provider":          optional(a.Provider),
		"email":             a.Email,
		"phone":             a.Phone,
		"address":           a.Address,
		"notes":             a.Notes,
		"monthly_usage_kwh": a.MonthlyUsageKWh,
		"monthly_bill":      a.MonthlyBill,
		"last_activity":     a.LastActivity,
	}
}

func (p Provider) Record() record.Record {
	active := "Inactive"
	if p.Active {
		active = "Active"
	}
	return record.Record{
		"id":              p.ID,
		"name":            p.Name,
		"type":            p.Type,
		"contact":         p.Contact,
		"email":           p.Email,
		"phone":           p.Phone,
		"payment_terms":   p.PaymentTerms,
		"commission_rate": p.CommissionRate,
		"notes":           p.Notes,
		"active":          active,
	}
}

func (m Manager) Record() record.Record {
	return record.Record{
		"id":      m.ID,
		"name":    m.Name,
		"company": m.Company,
		"office":  m.Office,
		"email":   m.Email,
		"phone":   m.Phone,
		"status":  m.Status,
		"notes":   m.Notes,
	}
}

func (c Commission) Record() record.Record {
	return record.Record{
		"id":                  c.ID,
		"account_name":        c.AccountName,
		"manager":             optional(c.Manager),
		"provider":            c.Provider,
		"commission_amount":   c.Amount,
		"status":              c.Status,
		"contract_expiration": c.ContractExpiration,
	}
}

func (t Task) Record() record.Record {
	return record.Record{
		"id":           t.ID,
		"title":        t.Title,
		"account_name": t.AccountName,
		"action":       t.Action,
		"status":       t.Status,
		"priority":     t.Priority,
		"due":          t.Due,
	}
}

// Records converts rows with a Record method.
func Records[T interface{ Record() record.Record }](rows []T) []record.Record {
	out := make([]record.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Record())
	}
	return out
}

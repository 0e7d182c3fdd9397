package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jask/kilowatt/internal/database/repository"
)

// SeedID derives a stable id for seeded rows so reseeding never duplicates them.
func SeedID(kind, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+name)).String()
}

func ptr(s string) *string { return &s }

// SeedDefaults loads the demo dataset into an empty database.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	return WithTx(ctx, db, func(tx *sql.Tx) error {
		return seed(ctx, tx)
	})
}

func seed(ctx context.Context, tx *sql.Tx) error {
	for _, m := range []repository.Manager{
		{Name: "Sarah Johnson", Company: "Johnson Property Group", Office: "Dallas", Email: "sarah@johnsonpg.com", Phone: "2145550101", Status: "Active"},
		{Name: "Mike Chen", Company: "Chen Realty", Office: "Houston", Email: "mike@chenrealty.com", Phone: "7135550102", Status: "Active"},
		{Name: "Emily Davis", Company: "Davis Commercial", Office: "Austin", Email: "emily@daviscommercial.com", Phone: "5125550103", Status: "Inactive"},
	} {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO managers(id, name, company, office, email, phone, status, notes) VALUES (?, ?, ?, ?, ?, ?, ?, '')`,
			SeedID("manager", m.Name), m.Name, m.Company, m.Office, m.Email, m.Phone, m.Status); err != nil {
			return err
		}
	}

	for _, p := range []repository.Provider{
		{Name: "TXU Energy", Type: "Retail", Contact: "Dana Lee", Email: "broker@txu.com", PaymentTerms: "Net 30", CommissionRate: 0.005, Active: true},
		{Name: "Reliant", Type: "Retail", Contact: "Chris Ford", Email: "partners@reliant.com", PaymentTerms: "Net 45", CommissionRate: 0.004, Active: true},
		{Name: "Direct Energy", Type: "Retail", Contact: "Pat Morgan", Email: "channel@directenergy.com", PaymentTerms: "Net 30", CommissionRate: 0.0045, Active: true},
		{Name: "Constellation", Type: "Wholesale", Contact: "Jordan Blake", Email: "brokers@constellation.com", PaymentTerms: "Net 60", CommissionRate: 0.003, Active: false},
	} {
		active := 0
		if p.Active {
			active = 1
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO providers(id, name, type, contact, email, phone, payment_terms, commission_rate, notes, active)
		VALUES (?, ?, ?, ?, ?, '', ?, ?, '', ?)`,
			SeedID("provider", p.Name), p.Name, p.Type, p.Contact, p.Email, p.PaymentTerms, p.CommissionRate, active); err != nil {
			return err
		}
	}

	for _, a := range []repository.Account{
		{Name: "ABC Corporation", CustomerName: "ABC Corp", AccountType: "Commercial", Status: "Active", Manager: ptr("Sarah Johnson"), Provider: ptr("TXU Energy"), Email: "billing@abccorp.com", MonthlyUsageKWh: 45000, MonthlyBill: 5400, LastActivity: "2024-01-15"},
		{Name: "XYZ Industries", CustomerName: "XYZ Holdings", AccountType: "Industrial", Status: "Pending", Manager: ptr("Sarah Johnson"), Provider: ptr("Reliant"), Email: "ap@xyzind.com", MonthlyUsageKWh: 32000, MonthlyBill: 3900, LastActivity: "2024-01-14"},
		{Name: "Main Street Plaza", CustomerName: "Main Street LLC", AccountType: "Commercial", Status: "Active", Manager: ptr("Mike Chen"), Provider: ptr("Direct Energy"), Email: "office@mainstplaza.com", MonthlyUsageKWh: 68000, MonthlyBill: 8100, LastActivity: "2024-01-13"},
		{Name: "Downtown Center", CustomerName: "Downtown Partners", AccountType: "Commercial", Status: "Inactive", Manager: nil, Provider: ptr("TXU Energy"), Email: "finance@downtowncenter.com", MonthlyUsageKWh: 38000, MonthlyBill: 4600, LastActivity: "2024-01-12"},
		{Name: "Tech Park LLC", CustomerName: "Tech Park", AccountType: "Commercial", Status: "Active", Manager: ptr("Emily Davis"), Provider: nil, Email: "facilities@techpark.com", MonthlyUsageKWh: 28000, MonthlyBill: 3300, LastActivity: "2024-01-11"},
		{Name: "Industrial Complex", CustomerName: "Gulf Industrial", AccountType: "Industrial", Status: "Pending", Manager: nil, Provider: ptr("Constellation"), Email: "ops@gulfindustrial.com", MonthlyUsageKWh: 120000, MonthlyBill: 13200, LastActivity: "2024-01-10"},
		{Name: "Oak Residence", CustomerName: "R. Oakley", AccountType: "Residential", Status: "Active", Manager: nil, Provider: ptr("Reliant"), Email: "oakley@example.com", MonthlyUsageKWh: 1200, MonthlyBill: 165, LastActivity: "2024-01-09"},
	} {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO accounts(id, name, customer_name, account_type, status, manager, provider,
		 email, phone, address, notes, monthly_usage_kwh, monthly_bill, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', '', '', ?, ?, ?)`,
			SeedID("account", a.Name), a.Name, a.CustomerName, a.AccountType, a.Status, a.Manager, a.Provider,
			a.Email, a.MonthlyUsageKWh, a.MonthlyBill, a.LastActivity); err != nil {
			return err
		}
	}

	for _, c := range []repository.Commission{
		{AccountName: "ABC Corporation", Manager: ptr("Sarah Johnson"), Provider: "TXU Energy", Amount: 5200, Status: "Paid", ContractExpiration: "2025-01-15"},
		{AccountName: "XYZ Industries", Manager: ptr("Sarah Johnson"), Provider: "Reliant", Amount: 3800, Status: "Pending", ContractExpiration: "2024-09-30"},
		{AccountName: "Main Street Plaza", Manager: ptr("Mike Chen"), Provider: "Direct Energy", Amount: 7200, Status: "Paid", ContractExpiration: "2025-06-01"},
		{AccountName: "Downtown Center", Manager: nil, Provider: "TXU Energy", Amount: 4500, Status: "Pending", ContractExpiration: ""},
		{AccountName: "Tech Park LLC", Manager: ptr("Emily Davis"), Provider: "Reliant", Amount: 3100, Status: "Paid", ContractExpiration: "2024-12-31"},
	} {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO commissions(id, account_name, manager, provider, amount, status, contract_expiration)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
			SeedID("commission", c.AccountName), c.AccountName, c.Manager, c.Provider, c.Amount, c.Status, c.ContractExpiration); err != nil {
			return err
		}
	}

	for _, t := range []repository.Task{
		{Title: "Super Flag", AccountName: "ABC Corporation", Action: "draft_email", Priority: "High", Due: "2024-01-15"},
		{Title: "Provider Selection", AccountName: "XYZ Industries", Action: "refresh_usage", Priority: "Medium", Due: "2024-01-14"},
		{Title: "New Account Verification", AccountName: "Main Street Plaza", Action: "send_reminder", Priority: "Low", Due: "2024-01-13"},
		{Title: "Super Flag", AccountName: "Downtown Center", Action: "draft_email", Priority: "High", Due: "2024-01-12"},
		{Title: "Provider Selection", AccountName: "Tech Park LLC", Action: "refresh_usage", Priority: "Medium", Due: "2024-01-11"},
		{Title: "New Account Verification", AccountName: "Industrial Complex", Action: "send_reminder", Priority: "Low", Due: "2024-01-10"},
	} {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO tasks(id, title, account_name, action, status, priority, due) VALUES (?, ?, ?, ?, 'Open', ?, ?)`,
			SeedID("task", t.Title+"/"+t.AccountName), t.Title, t.AccountName, t.Action, t.Priority, t.Due); err != nil {
			return err
		}
	}
	return nil
}

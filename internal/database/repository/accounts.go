package repository

import (
	"context"
	"database/sql"
	"errors"
)

// AccountRepo handles accounts.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Upsert(ctx context.Context, a Account) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(id, name, customer_name, account_type, status, manager, provider,
	 email, phone, address, notes, monthly_usage_kwh, monthly_bill, last_activity, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 customer_name=excluded.customer_name,
	 account_type=excluded.account_type,
	 status=excluded.status,
	 manager=excluded.manager,
	 provider=excluded.provider,
	 email=excluded.email,
	 phone=excluded.phone,
	 address=excluded.address,
	 notes=excluded.notes,
	 monthly_usage_kwh=excluded.monthly_usage_kwh,
	 monthly_bill=excluded.monthly_bill,
	 last_activity=excluded.last_activity,
	 updated_at=CURRENT_TIMESTAMP;
	`, a.ID, a.Name, a.CustomerName, a.AccountType, a.Status, a.Manager, a.Provider,
		a.Email, a.Phone, a.Address, a.Notes, a.MonthlyUsageKWh, a.MonthlyBill, a.LastActivity)
	return err
}

const accountColumns = `id, name, customer_name, account_type, status, manager, provider,
 email, phone, address, notes, monthly_usage_kwh, monthly_bill, last_activity`

func scanAccount(s interface{ Scan(...any) error }) (Account, error) {
	var a Account
	err := s.Scan(&a.ID, &a.Name, &a.CustomerName, &a.AccountType, &a.Status, &a.Manager, &a.Provider,
		&a.Email, &a.Phone, &a.Address, &a.Notes, &a.MonthlyUsageKWh, &a.MonthlyBill, &a.LastActivity)
	return a, err
}

// List returns accounts in insertion order, matching how the list screens present them.
func (r *AccountRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Get returns one account, nil when missing.
func (r *AccountRepo) Get(ctx context.Context, id string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// Names returns every account name.
func (r *AccountRepo) Names(ctx context.Context) ([]string, error) {
	return names(ctx, r.db, `SELECT name FROM accounts`)
}

func names(ctx context.Context, db *sql.DB, query string) ([]string, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

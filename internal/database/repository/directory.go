package repository

import (
	"context"
	"database/sql"
)

// ProviderRepo handles retail electric providers.
type ProviderRepo struct {
	db *sql.DB
}

func NewProviderRepo(db *sql.DB) *ProviderRepo {
	return &ProviderRepo{db: db}
}

func (r *ProviderRepo) Upsert(ctx context.Context, p Provider) error {
	active := 0
	if p.Active {
		active = 1
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO providers(id, name, type, contact, email, phone, payment_terms, commission_rate, notes, active, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 type=excluded.type,
	 contact=excluded.contact,
	 email=excluded.email,
	 phone=excluded.phone,
	 payment_terms=excluded.payment_terms,
	 commission_rate=excluded.commission_rate,
	 notes=excluded.notes,
	 active=excluded.active;
	`, p.ID, p.Name, p.Type, p.Contact, p.Email, p.Phone, p.PaymentTerms, p.CommissionRate, p.Notes, active)
	return err
}

func (r *ProviderRepo) List(ctx context.Context) ([]Provider, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, name, type, contact, email, phone, payment_terms, commission_rate, notes, active
	FROM providers ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Provider
	for rows.Next() {
		var p Provider
		var active int
		if err := rows.Scan(&p.ID, &p.Name, &p.Type, &p.Contact, &p.Email, &p.Phone,
			&p.PaymentTerms, &p.CommissionRate, &p.Notes, &active); err != nil {
			return nil, err
		}
		p.Active = active != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProviderRepo) Names(ctx context.Context) ([]string, error) {
	return names(ctx, r.db, `SELECT name FROM providers`)
}

// ManagerRepo handles property managers.
type ManagerRepo struct {
	db *sql.DB
}

func NewManagerRepo(db *sql.DB) *ManagerRepo {
	return &ManagerRepo{db: db}
}

func (r *ManagerRepo) Upsert(ctx context.Context, m Manager) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO managers(id, name, company, office, email, phone, status, notes, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 company=excluded.company,
	 office=excluded.office,
	 email=excluded.email,
	 phone=excluded.phone,
	 status=excluded.status,
	 notes=excluded.notes;
	`, m.ID, m.Name, m.Company, m.Office, m.Email, m.Phone, m.Status, m.Notes)
	return err
}

func (r *ManagerRepo) List(ctx context.Context) ([]Manager, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, name, company, office, email, phone, status, notes
	FROM managers ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Manager
	for rows.Next() {
		var m Manager
		if err := rows.Scan(&m.ID, &m.Name, &m.Company, &m.Office, &m.Email, &m.Phone, &m.Status, &m.Notes); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *ManagerRepo) Names(ctx context.Context) ([]string, error) {
	return names(ctx, r.db, `SELECT name FROM managers`)
}

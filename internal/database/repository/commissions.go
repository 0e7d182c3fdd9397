package repository

import (
	"context"
	"database/sql"
)

// CommissionRepo handles commission schedules.
type CommissionRepo struct {
	db *sql.DB
}

func NewCommissionRepo(db *sql.DB) *CommissionRepo {
	return &CommissionRepo{db: db}
}

func (r *CommissionRepo) Upsert(ctx context.Context, c Commission) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO commissions(id, account_name, manager, provider, amount, status, contract_expiration)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 account_name=excluded.account_name,
	 manager=excluded.manager,
	 provider=excluded.provider,
	 amount=excluded.amount,
	 status=excluded.status,
	 contract_expiration=excluded.contract_expiration;
	`, c.ID, c.AccountName, c.Manager, c.Provider, c.Amount, c.Status, c.ContractExpiration)
	return err
}

func (r *CommissionRepo) List(ctx context.Context) ([]Commission, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, account_name, manager, provider, amount, status, contract_expiration
	FROM commissions ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Commission
	for rows.Next() {
		var c Commission
		if err := rows.Scan(&c.ID, &c.AccountName, &c.Manager, &c.Provider, &c.Amount, &c.Status, &c.ContractExpiration); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// TaskRepo handles automation tasks.
type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

func (r *TaskRepo) Upsert(ctx context.Context, t Task) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO tasks(id, title, account_name, action, status, priority, due)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 title=excluded.title,
	 account_name=excluded.account_name,
	 action=excluded.action,
	 status=excluded.status,
	 priority=excluded.priority,
	 due=excluded.due;
	`, t.ID, t.Title, t.AccountName, t.Action, t.Status, t.Priority, t.Due)
	return err
}

// SetStatus updates a task's status, returning false when no such task exists.
func (r *TaskRepo) SetStatus(ctx context.Context, id, status string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *TaskRepo) List(ctx context.Context) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, title, account_name, action, status, priority, due
	FROM tasks ORDER BY due, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.AccountName, &t.Action, &t.Status, &t.Priority, &t.Due); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

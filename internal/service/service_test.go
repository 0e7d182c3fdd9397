package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/kilowatt/internal/database"
	"github.com/jask/kilowatt/internal/database/repository"
	"github.com/jask/kilowatt/internal/record"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := database.OpenMigrated(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newDashboard(db *sql.DB) *Dashboard {
	return &Dashboard{
		Accounts:    repository.NewAccountRepo(db),
		Providers:   repository.NewProviderRepo(db),
		Managers:    repository.NewManagerRepo(db),
		Commissions: repository.NewCommissionRepo(db),
		Tasks:       repository.NewTaskRepo(db),
	}
}

func TestDashboardLoadSummary(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	snap, err := newDashboard(db).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Accounts, 7)
	require.Len(t, snap.Providers, 4)
	require.Len(t, snap.Managers, 3)
	require.Len(t, snap.Commissions, 5)
	require.Len(t, snap.Tasks, 6)

	require.Equal(t, map[string]int{"Active": 4, "Pending": 2, "Inactive": 1}, snap.Summary.AccountsByStatus)
	require.InDelta(t, 23800, snap.Summary.CommissionTotal, 0.001)
	require.InDelta(t, 15500, snap.Summary.CommissionByState["Paid"], 0.001)
	require.InDelta(t, 8300, snap.Summary.CommissionByState["Pending"], 0.001)
	require.Equal(t, 6, snap.Summary.OpenTasks)

	var unmanaged int
	for _, a := range snap.Accounts {
		if a["manager"] == nil {
			unmanaged++
		}
	}
	require.Equal(t, 3, unmanaged)
}

func TestDashboardLoadCancelled(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newDashboard(db).Load(ctx)
	require.Error(t, err)
}

func TestAccountCreate(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := repository.NewAccountRepo(db)
	svc := &AccountService{Accounts: repo, Now: func() time.Time {
		return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	}}
	ctx := context.Background()

	err := svc.Create(ctx, record.Record{
		"name":              "Lakeside Mall",
		"customer_name":     "Lakeside Retail",
		"account_type":      "Commercial",
		"status":            "Active",
		"email":             "ops@lakeside.com",
		"manager":           "  ",
		"monthly_usage_kwh": "52000",
	})
	require.NoError(t, err)

	accounts, err := repo.List(ctx)
	require.NoError(t, err)
	created := accounts[len(accounts)-1]
	require.Equal(t, "Lakeside Mall", created.Name)
	require.Nil(t, created.Manager)
	require.InDelta(t, 52000, created.MonthlyUsageKWh, 0.001)
	require.Equal(t, "2024-03-01", created.LastActivity)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, *got)
}

func TestAccountCreateRejectsNearDuplicate(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := &AccountService{Accounts: repository.NewAccountRepo(db)}

	err := svc.Create(context.Background(), record.Record{"name": "abc corporaton"})
	require.ErrorIs(t, err, ErrDuplicateName)
	require.Contains(t, err.Error(), "ABC Corporation")
}

func TestAccountCreateRejectsBadNumber(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := &AccountService{Accounts: repository.NewAccountRepo(db)}

	err := svc.Create(context.Background(), record.Record{"name": "Riverside Lofts", "monthly_usage_kwh": "lots"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrDuplicateName)
}

func TestProviderCreateStoresRateAsFraction(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := repository.NewProviderRepo(db)
	svc := &ProviderService{Providers: repo}
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, record.Record{
		"name":            "Green Mountain",
		"type":            "Electricity",
		"commission_rate": "0.5",
		"payment_terms":   "Net 30",
	}))
	providers, err := repo.List(ctx)
	require.NoError(t, err)
	p := providers[len(providers)-1]
	require.Equal(t, "Green Mountain", p.Name)
	require.InDelta(t, 0.005, p.CommissionRate, 1e-9)
	require.True(t, p.Active)

	require.ErrorIs(t, svc.Create(ctx, record.Record{"name": "Reliant "}), ErrDuplicateName)
}

func TestManagerCreateDefaultsStatus(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := repository.NewManagerRepo(db)
	svc := &ManagerService{Managers: repo}
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, record.Record{"name": "Priya Patel", "company": "Patel Holdings"}))
	managers, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "Active", managers[len(managers)-1].Status)

	require.ErrorIs(t, svc.Create(ctx, record.Record{"name": "Mike Chan"}), ErrDuplicateName)
}

func TestAutomationRunMarksTaskDone(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	tasks := repository.NewTaskRepo(db)
	ctx := context.Background()
	list, err := tasks.List(ctx)
	require.NoError(t, err)
	target := list[0]

	a := &Automation{Tasks: tasks, Delay: time.Millisecond}
	require.NoError(t, a.Run(ctx, target.ID, target.Action))

	list, err = tasks.List(ctx)
	require.NoError(t, err)
	for _, task := range list {
		if task.ID == target.ID {
			require.Equal(t, "Done", task.Status)
		}
	}
}

func TestAutomationRunErrors(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	a := &Automation{Tasks: repository.NewTaskRepo(db), Delay: time.Hour}

	require.ErrorContains(t, a.Run(context.Background(), "x", "launch_rocket"), "unknown action")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, a.Run(ctx, "x", ActionSendReminder), context.Canceled)

	a.Delay = 0
	require.ErrorContains(t, a.Run(context.Background(), "missing", ActionDraftEmail), "not found")
}

func TestImportAccounts(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := repository.NewAccountRepo(db)
	svc := &IngestService{Accounts: repo}
	ctx := context.Background()

	data := strings.Join([]string{
		"name,customer,type,status,manager,usage_kwh,bill",
		"Harbor Point,Harbor LLC,Commercial,Active,Mike Chen,\"41,000\",$5200.50",
		"Birch Court,Birch HOA,Residential,Pending,,900,120",
		"ABC Corporation,Dup,Commercial,Active,,1,1",
		"Harbour Point,Again,Commercial,Active,,1,1",
		"Cedar Works,Cedar,Industrial,Active,,many,1",
		",NoName,Commercial,Active,,1,1",
		"Short,Row",
	}, "\n")

	res, err := svc.ImportAccounts(ctx, strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 2, res.Imported)
	require.Equal(t, 2, res.Skipped)
	require.Len(t, res.Errors, 3)
	require.ErrorContains(t, res.Errors[0], "line 6 usage_kwh")

	accounts, err := repo.List(ctx)
	require.NoError(t, err)
	byName := map[string]repository.Account{}
	for _, a := range accounts {
		byName[a.Name] = a
	}
	harbor := byName["Harbor Point"]
	require.NotNil(t, harbor.Manager)
	require.Equal(t, "Mike Chen", *harbor.Manager)
	require.InDelta(t, 41000, harbor.MonthlyUsageKWh, 0.001)
	require.InDelta(t, 5200.50, harbor.MonthlyBill, 0.001)
	require.Nil(t, byName["Birch Court"].Manager)
}

func TestImportAccountsBadHeader(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc := &IngestService{Accounts: repository.NewAccountRepo(db)}

	_, err := svc.ImportAccounts(context.Background(), strings.NewReader("date,amount,description\n"))
	require.ErrorContains(t, err, `header column 1: got "date", want "name"`)

	_, err = svc.ImportAccounts(context.Background(), strings.NewReader("name,customer,type\n"))
	require.ErrorContains(t, err, "missing 4 of 7 columns")

	res, err := svc.ImportAccounts(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	require.Zero(t, res.Imported)
}

func TestMaintenanceReset(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, (&MaintenanceService{DB: db}).Reset(ctx))
	for _, table := range []string{"accounts", "providers", "managers", "commissions", "tasks"} {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n))
		require.Zero(t, n, table)
	}

	require.Error(t, (&MaintenanceService{}).Reset(ctx))
}

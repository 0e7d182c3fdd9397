package demo

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/kilowatt/internal/catalog"
	"github.com/jask/kilowatt/internal/database"
	"github.com/jask/kilowatt/internal/database/repository"
	"github.com/jask/kilowatt/internal/filter"
)

func repos(t *testing.T) Repos {
	t.Helper()
	db, err := database.OpenMigrated(context.Background(), filepath.Join(t.TempDir(), "demo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return Repos{
		Accounts:    repository.NewAccountRepo(db),
		Commissions: repository.NewCommissionRepo(db),
		Tasks:       repository.NewTaskRepo(db),
	}
}

var fixedNow = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func TestGenerateIsDeterministic(t *testing.T) {
	ctx := context.Background()
	opts := Options{Accounts: 50, Seed: 7, Managers: []string{"Sarah Johnson", "Mike Chen"}, Providers: []string{"TXU Energy"}, Now: fixedNow}

	r := repos(t)
	first, err := Generate(ctx, r, opts)
	require.NoError(t, err)
	require.Equal(t, 50, first.Accounts)

	// A second run upserts the same ids.
	again, err := Generate(ctx, r, opts)
	require.NoError(t, err)
	require.Equal(t, first, again)

	list, err := r.Accounts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 7+50)

	other := repos(t)
	_, err = Generate(ctx, other, opts)
	require.NoError(t, err)
	otherList, err := other.Accounts.List(ctx)
	require.NoError(t, err)
	require.Equal(t, repository.Records(list), repository.Records(otherList))
}

func TestGenerateRejectsEmptyCount(t *testing.T) {
	_, err := Generate(context.Background(), repos(t), Options{})
	require.ErrorContains(t, err, "must be positive")
}

func TestGenerateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Generate(ctx, repos(t), Options{Accounts: 10})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, res.Accounts)
}

func TestFilterLargeBookP95(t *testing.T) {
	if testing.Short() {
		t.Skip("large dataset")
	}
	ctx := context.Background()
	r := repos(t)
	_, err := Generate(ctx, r, Options{Accounts: 2000, Seed: 1, Managers: []string{"Sarah Johnson"}, Now: fixedNow})
	require.NoError(t, err)
	list, err := r.Accounts.List(ctx)
	require.NoError(t, err)
	rows := repository.Records(list)

	runs := 40
	durations := make([]time.Duration, 0, runs)
	for i := 0; i < runs; i++ {
		start := time.Now()
		v := filter.NewView(catalog.Accounts.Engine(), rows)
		v.Filter.Search = "plaza"
		v.Filter.Toggle("manager", filter.Unassigned)
		v.Sort = filter.SortState{Field: "monthly_bill", Dir: filter.Descending}
		_ = v.Rows()
		durations = append(durations, time.Since(start))
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	p95 := durations[int(float64(len(durations)-1)*0.95)]
	if p95 > 100*time.Millisecond {
		t.Fatalf("filter+sort p95=%s exceeds 100ms target", p95)
	}
}

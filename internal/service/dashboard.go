package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jask/kilowatt/internal/database/repository"
	"github.com/jask/kilowatt/internal/record"
)

// Snapshot is one consistent read of every collection the dashboard shows.
type Snapshot struct {
	Accounts    []record.Record
	Providers   []record.Record
	Managers    []record.Record
	Commissions []record.Record
	Tasks       []record.Record
	Summary     Summary
}

// Summary holds the home page figures.
type Summary struct {
	AccountsByStatus  map[string]int
	CommissionByState map[string]float64
	CommissionTotal   float64
	MonthlyUsageKWh   float64
	OpenTasks         int
}

// Dashboard loads collections for the list screens.
type Dashboard struct {
	Accounts    *repository.AccountRepo
	Providers   *repository.ProviderRepo
	Managers    *repository.ManagerRepo
	Commissions *repository.CommissionRepo
	Tasks       *repository.TaskRepo
}

// Load reads all collections concurrently. The first failure cancels the rest.
func (d *Dashboard) Load(ctx context.Context) (Snapshot, error) {
	var (
		accounts    []repository.Account
		providers   []repository.Provider
		managers    []repository.Manager
		commissions []repository.Commission
		tasks       []repository.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		accounts, err = d.Accounts.List(gctx)
		return wrap("accounts", err)
	})
	g.Go(func() (err error) {
		providers, err = d.Providers.List(gctx)
		return wrap("providers", err)
	})
	g.Go(func() (err error) {
		managers, err = d.Managers.List(gctx)
		return wrap("managers", err)
	})
	g.Go(func() (err error) {
		commissions, err = d.Commissions.List(gctx)
		return wrap("commissions", err)
	})
	g.Go(func() (err error) {
		tasks, err = d.Tasks.List(gctx)
		return wrap("tasks", err)
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Accounts:    repository.Records(accounts),
		Providers:   repository.Records(providers),
		Managers:    repository.Records(managers),
		Commissions: repository.Records(commissions),
		Tasks:       repository.Records(tasks),
		Summary:     summarize(accounts, commissions, tasks),
	}, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", what, err)
	}
	return nil
}

func summarize(accounts []repository.Account, commissions []repository.Commission, tasks []repository.Task) Summary {
	s := Summary{
		AccountsByStatus:  map[string]int{},
		CommissionByState: map[string]float64{},
	}
	for _, a := range accounts {
		s.AccountsByStatus[a.Status]++
		s.MonthlyUsageKWh += a.MonthlyUsageKWh
	}
	for _, c := range commissions {
		s.CommissionByState[c.Status] += c.Amount
		s.CommissionTotal += c.Amount
	}
	for _, t := range tasks {
		if t.Status != "Done" {
			s.OpenTasks++
		}
	}
	return s
}

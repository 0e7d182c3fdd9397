package demo

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/jask/kilowatt/internal/database/repository"
	"github.com/jask/kilowatt/internal/service"
)

// Repos bundles repos used by Generate.
type Repos struct {
	Accounts    *repository.AccountRepo
	Commissions *repository.CommissionRepo
	Tasks       *repository.TaskRepo
}

// Options controls the size and shape of a generated book of business.
type Options struct {
	Accounts  int
	Seed      uint64
	Managers  []string
	Providers []string
	Now       time.Time
}

// Result counts what Generate wrote.
type Result struct {
	Accounts    int
	Commissions int
	Tasks       int
}

var (
	sites    = []string{"Plaza", "Tower", "Center", "Warehouse", "Campus", "Residence", "Mill", "Depot"}
	streets  = []string{"Elm", "Cedar", "Commerce", "Harbor", "Ridge", "Lamar", "Travis", "Main"}
	types    = []string{"Commercial", "Industrial", "Residential"}
	statuses = []string{"Active", "Active", "Active", "Pending", "Inactive"}
	states   = []string{"Paid", "Pending"}
	prios    = []string{"High", "Medium", "Low"}
)

// Generate writes opts.Accounts synthetic accounts, one commission schedule for
// every non-residential account, and a follow-up task for each pending one.
// The same seed always yields the same rows.
func Generate(ctx context.Context, repos Repos, opts Options) (Result, error) {
	var res Result
	if opts.Accounts <= 0 {
		return res, fmt.Errorf("account count must be positive, got %d", opts.Accounts)
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	pick := func(xs []string) string { return xs[rng.IntN(len(xs))] }
	maybe := func(xs []string) *string {
		if len(xs) == 0 || rng.IntN(4) == 0 {
			return nil
		}
		s := pick(xs)
		return &s
	}

	for i := 1; i <= opts.Accounts; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		name := fmt.Sprintf("%s %s %04d", pick(streets), pick(sites), i)
		kind := pick(types)
		usage := float64(1000 + rng.IntN(120_000))
		if kind == "Residential" {
			usage = float64(600 + rng.IntN(2400))
		}
		acct := repository.Account{
			ID:              uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("demo:%d:%s", opts.Seed, name))).String(),
			Name:            name,
			CustomerName:    name + " Owner",
			AccountType:     kind,
			Status:          pick(statuses),
			Manager:         maybe(opts.Managers),
			Provider:        maybe(opts.Providers),
			MonthlyUsageKWh: usage,
			MonthlyBill:     usage * (0.10 + float64(rng.IntN(40))/1000),
			LastActivity:    opts.Now.AddDate(0, 0, -rng.IntN(90)).Format(time.DateOnly),
		}
		if err := repos.Accounts.Upsert(ctx, acct); err != nil {
			return res, fmt.Errorf("account %s: %w", name, err)
		}
		res.Accounts++

		if kind != "Residential" && acct.Provider != nil && repos.Commissions != nil {
			c := repository.Commission{
				ID:                 uuid.NewSHA1(uuid.NameSpaceOID, []byte("commission:"+acct.ID)).String(),
				AccountName:        name,
				Manager:            acct.Manager,
				Provider:           *acct.Provider,
				Amount:             float64(500 + rng.IntN(9500)),
				Status:             pick(states),
				ContractExpiration: opts.Now.AddDate(0, 3+rng.IntN(33), 0).Format(time.DateOnly),
			}
			if err := repos.Commissions.Upsert(ctx, c); err != nil {
				return res, fmt.Errorf("commission %s: %w", name, err)
			}
			res.Commissions++
		}

		if acct.Status == "Pending" && repos.Tasks != nil {
			t := repository.Task{
				ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte("task:"+acct.ID)).String(),
				Title:       "New Account Verification",
				AccountName: name,
				Action:      service.ActionSendReminder,
				Status:      "Open",
				Priority:    pick(prios),
				Due:         opts.Now.AddDate(0, 0, 1+rng.IntN(14)).Format(time.DateOnly),
			}
			if err := repos.Tasks.Upsert(ctx, t); err != nil {
				return res, fmt.Errorf("task %s: %w", name, err)
			}
			res.Tasks++
		}
	}
	return res, nil
}

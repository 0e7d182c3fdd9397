package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/kilowatt/internal/catalog"
	"github.com/jask/kilowatt/internal/database/repository"
	"github.com/jask/kilowatt/internal/demo"
	"github.com/jask/kilowatt/internal/filter"
	"github.com/jask/kilowatt/internal/record"
	"github.com/jask/kilowatt/internal/service"
)

// listOptions are the filter flags shared by the list subcommands.
type listOptions struct {
	search string
	facets map[string]*[]string
	sort   string
	desc   bool
}

func (o *listOptions) bind(cmd *cobra.Command, coll catalog.Collection, facetFlags map[string]string) {
	o.facets = map[string]*[]string{}
	cmd.Flags().StringVar(&o.search, "search", "", "case-insensitive substring over "+strings.Join(coll.Searchable, ", "))
	for flag, field := range facetFlags {
		values := new([]string)
		o.facets[field] = values
		cmd.Flags().StringSliceVar(values, flag, nil, fmt.Sprintf("only rows whose %s is one of these (use %q for blanks)", field, filter.UnassignedLabel))
	}
	cmd.Flags().StringVar(&o.sort, "sort", "", "sort field: "+strings.Join(coll.SortFields, ", "))
	cmd.Flags().BoolVar(&o.desc, "desc", false, "sort descending")
}

// view applies the options to rows.
func (o *listOptions) view(coll catalog.Collection, rows []record.Record) ([]record.Record, error) {
	v := filter.NewView(coll.Engine(), rows)
	v.Filter.Search = o.search
	for field, values := range o.facets {
		for _, val := range *values {
			if strings.EqualFold(val, filter.UnassignedLabel) {
				val = filter.Unassigned
			}
			v.Filter.Include(field, val)
		}
	}
	if o.sort != "" {
		if !coll.HasSort(o.sort) {
			return nil, fmt.Errorf("cannot sort %s by %q (choose from %s)", coll.Name, o.sort, strings.Join(coll.SortFields, ", "))
		}
		v.Sort = filter.SortState{Field: o.sort, Dir: filter.Ascending}
		if o.desc {
			v.Sort.Dir = filter.Descending
		}
	}
	return v.Rows(), nil
}

func printTable(w io.Writer, coll catalog.Collection, rows []record.Record, currency string) {
	headers := make([]string, 0, len(coll.Columns))
	for _, c := range coll.Columns {
		headers = append(headers, c.Title)
	}
	t := table.New().Border(lipgloss.NormalBorder()).Headers(headers...)
	for _, r := range rows {
		cells := make([]string, 0, len(coll.Columns))
		for _, c := range coll.Columns {
			cells = append(cells, c.Render(r, currency))
		}
		t.Row(cells...)
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "%d %s\n", len(rows), coll.Name)
}

var accountOpts listOptions

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts",
	Example: `  kilowatt accounts --search plaza
  kilowatt accounts --manager unassigned --sort monthly_bill --desc`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		list, err := repository.NewAccountRepo(db).List(cmd.Context())
		if err != nil {
			return err
		}
		rows, err := accountOpts.view(catalog.Accounts, repository.Records(list))
		if err != nil {
			return err
		}
		printTable(cmd.OutOrStdout(), catalog.Accounts, rows, cfg.UI.CurrencySymbol)
		return nil
	},
}

var commissionOpts listOptions

var commissionsCmd = &cobra.Command{
	Use:   "commissions",
	Short: "List commission schedules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		list, err := repository.NewCommissionRepo(db).List(cmd.Context())
		if err != nil {
			return err
		}
		rows, err := commissionOpts.view(catalog.Commissions, repository.Records(list))
		if err != nil {
			return err
		}
		printTable(cmd.OutOrStdout(), catalog.Commissions, rows, cfg.UI.CurrencySymbol)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <csv>",
	Short: "Import accounts from CSV",
	Long: `Imports accounts from a CSV file with the header row:

  ` + strings.Join(service.ImportHeader, ",") + `

Names within two edits of an existing account are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		svc := &service.IngestService{Accounts: repository.NewAccountRepo(db), Log: logger}
		res, err := svc.ImportAccounts(cmd.Context(), f)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "imported %d, skipped %d, errors %d\n", res.Imported, res.Skipped, len(res.Errors))
		for _, e := range res.Errors {
			fmt.Fprintf(out, "  %v\n", e)
		}
		return nil
	},
}

var demoOpts struct {
	accounts int
	seed     uint64
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Generate a synthetic book of business for trying out large lists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		managers, err := repository.NewManagerRepo(db).Names(ctx)
		if err != nil {
			return err
		}
		providers, err := repository.NewProviderRepo(db).Names(ctx)
		if err != nil {
			return err
		}
		res, err := demo.Generate(ctx, demo.Repos{
			Accounts:    repository.NewAccountRepo(db),
			Commissions: repository.NewCommissionRepo(db),
			Tasks:       repository.NewTaskRepo(db),
		}, demo.Options{Accounts: demoOpts.accounts, Seed: demoOpts.seed, Managers: managers, Providers: providers})
		if err != nil {
			return err
		}
		logger.Info("demo data generated", zap.Int("accounts", res.Accounts), zap.Uint64("seed", demoOpts.seed))
		fmt.Fprintf(cmd.OutOrStdout(), "generated %d accounts, %d commissions, %d tasks\n", res.Accounts, res.Commissions, res.Tasks)
		return nil
	},
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all data (the demo dataset is reseeded on next start)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return fmt.Errorf("refusing to reset %s without --yes", cfg.Database.Path)
		}
		db, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		if err := (&service.MaintenanceService{DB: db, Log: logger}).Reset(cmd.Context()); err != nil {
			return err
		}
		logger.Info("reset complete", zap.String("db", cfg.Database.Path))
		fmt.Fprintln(cmd.OutOrStdout(), "all data deleted")
		return nil
	},
}

func init() {
	accountOpts.bind(accountsCmd, catalog.Accounts, map[string]string{
		"status":  "status",
		"type":    "account_type",
		"manager": "manager",
	})
	commissionOpts.bind(commissionsCmd, catalog.Commissions, map[string]string{
		"status":   "status",
		"manager":  "manager",
		"provider": "provider",
	})
	demoCmd.Flags().IntVar(&demoOpts.accounts, "accounts", 500, "number of accounts to generate")
	demoCmd.Flags().Uint64Var(&demoOpts.seed, "seed", 1, "random seed; the same seed yields the same rows")
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm deleting all data")
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/kilowatt/internal/config"
	"github.com/jask/kilowatt/internal/database"
	"github.com/jask/kilowatt/internal/database/repository"
	"github.com/jask/kilowatt/internal/logging"
	"github.com/jask/kilowatt/internal/nav"
	"github.com/jask/kilowatt/internal/prefs"
	"github.com/jask/kilowatt/internal/service"
	"github.com/jask/kilowatt/internal/tui"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kilowatt",
	Short: "Kilowatt - energy brokerage dashboard",
	Long: `Kilowatt tracks electricity accounts, retail providers, property managers,
commission schedules and follow-up tasks.

Run without arguments to open the terminal dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		// The dashboard owns the terminal, so it logs to a file.
		if cmd == cmd.Root() {
			logger, err = logging.New(cfg.Log.Level, cfg.Log.Path)
		} else {
			logger, err = logging.Console(verbose)
		}
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/kilowatt/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(accountsCmd, commissionsCmd, importCmd, demoCmd, resetCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func openDB(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.OpenMigrated(ctx, cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	logger.Debug("database ready", zap.String("path", cfg.Database.Path))
	return db, nil
}

func runDashboard(ctx context.Context) error {
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	// repositories
	accounts := repository.NewAccountRepo(db)
	providers := repository.NewProviderRepo(db)
	managers := repository.NewManagerRepo(db)
	commissions := repository.NewCommissionRepo(db)
	tasks := repository.NewTaskRepo(db)

	services := tui.Services{
		Dashboard: &service.Dashboard{
			Accounts:    accounts,
			Providers:   providers,
			Managers:    managers,
			Commissions: commissions,
			Tasks:       tasks,
		},
		Accounts:   &service.AccountService{Accounts: accounts, Log: logger},
		Providers:  &service.ProviderService{Providers: providers, Log: logger},
		Managers:   &service.ManagerService{Managers: managers, Log: logger},
		Automation: &service.Automation{Tasks: tasks, Delay: cfg.Automation.Delay, Log: logger},
	}

	statePath := cfg.UI.StatePath
	if statePath == "" {
		if statePath, err = prefs.DefaultPath(); err != nil {
			return fmt.Errorf("state path: %w", err)
		}
	}
	start, ok := nav.ParsePage(cfg.UI.StartPage)
	if !ok || start.NeedsParams() {
		logger.Warn("unknown start page, using home", zap.String("page", cfg.UI.StartPage))
		start = nav.PageHome
	}
	router := nav.NewRouter(prefs.NewFileStore(statePath), start, logger)

	p := tea.NewProgram(tui.New(ctx, cfg, services, router, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

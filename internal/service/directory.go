package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/kilowatt/internal/database/repository"
	"github.com/jask/kilowatt/internal/record"
)

// ErrDuplicateName is returned when a new entry's name is a near match of an existing one.
var ErrDuplicateName = errors.New("duplicate name")

// maxNameDistance is the largest edit distance still treated as the same name.
const maxNameDistance = 2

// nearDuplicate returns the first existing name within maxNameDistance of name.
func nearDuplicate(name string, existing []string) (string, bool) {
	want := strings.ToUpper(strings.TrimSpace(name))
	for _, n := range existing {
		if levenshtein.ComputeDistance(want, strings.ToUpper(strings.TrimSpace(n))) <= maxNameDistance {
			return n, true
		}
	}
	return "", false
}

func nullableStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func number(rec record.Record, field string) (float64, error) {
	if rec.Blank(field) {
		return 0, nil
	}
	f, ok := rec.Number(field)
	if !ok {
		return 0, fmt.Errorf("%s: not a number: %q", field, rec.Text(field))
	}
	return f, nil
}

func loggerOr(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// AccountService creates accounts from the data-entry form.
type AccountService struct {
	Accounts *repository.AccountRepo
	Log      *zap.Logger
	Now      func() time.Time
}

// Create inserts the submitted account. It is the account form's completion callback.
func (s *AccountService) Create(ctx context.Context, rec record.Record) error {
	name := strings.TrimSpace(rec.Text("name"))
	existing, err := s.Accounts.Names(ctx)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	if match, dup := nearDuplicate(name, existing); dup {
		return fmt.Errorf("account %q is too close to %q: %w", name, match, ErrDuplicateName)
	}
	usage, err := number(rec, "monthly_usage_kwh")
	if err != nil {
		return err
	}
	bill, err := number(rec, "monthly_bill")
	if err != nil {
		return err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	a := repository.Account{
		ID:              uuid.NewString(),
		Name:            name,
		CustomerName:    rec.Text("customer_name"),
		AccountType:     rec.Text("account_type"),
		Status:          rec.Text("status"),
		Manager:         nullableStr(rec.Text("manager")),
		Provider:        nullableStr(rec.Text("provider")),
		Email:           rec.Text("email"),
		Phone:           rec.Text("phone"),
		Address:         rec.Text("address"),
		Notes:           rec.Text("notes"),
		MonthlyUsageKWh: usage,
		MonthlyBill:     bill,
		LastActivity:    now().Format(time.DateOnly),
	}
	if err := s.Accounts.Upsert(ctx, a); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	loggerOr(s.Log).Info("account created", zap.String("account", a.Name), zap.String("id", a.ID))
	return nil
}

// ProviderService creates providers.
type ProviderService struct {
	Providers *repository.ProviderRepo
	Log       *zap.Logger
}

// Create inserts the submitted provider. commission_rate is entered as a percentage.
func (s *ProviderService) Create(ctx context.Context, rec record.Record) error {
	name := strings.TrimSpace(rec.Text("name"))
	existing, err := s.Providers.Names(ctx)
	if err != nil {
		return fmt.Errorf("list providers: %w", err)
	}
	if match, dup := nearDuplicate(name, existing); dup {
		return fmt.Errorf("provider %q is too close to %q: %w", name, match, ErrDuplicateName)
	}
	rate, err := number(rec, "commission_rate")
	if err != nil {
		return err
	}
	p := repository.Provider{
		ID:             uuid.NewString(),
		Name:           name,
		Type:           rec.Text("type"),
		Contact:        rec.Text("contact"),
		Email:          rec.Text("email"),
		Phone:          rec.Text("phone"),
		PaymentTerms:   rec.Text("payment_terms"),
		CommissionRate: rate / 100,
		Notes:          rec.Text("notes"),
		Active:         true,
	}
	if err := s.Providers.Upsert(ctx, p); err != nil {
		return fmt.Errorf("insert provider: %w", err)
	}
	loggerOr(s.Log).Info("provider created", zap.String("provider", p.Name), zap.Float64("rate", p.CommissionRate))
	return nil
}

// ManagerService creates property managers.
type ManagerService struct {
	Managers *repository.ManagerRepo
	Log      *zap.Logger
}

func (s *ManagerService) Create(ctx context.Context, rec record.Record) error {
	name := strings.TrimSpace(rec.Text("name"))
	existing, err := s.Managers.Names(ctx)
	if err != nil {
		return fmt.Errorf("list managers: %w", err)
	}
	if match, dup := nearDuplicate(name, existing); dup {
		return fmt.Errorf("manager %q is too close to %q: %w", name, match, ErrDuplicateName)
	}
	status := rec.Text("status")
	if status == "" {
		status = "Active"
	}
	m := repository.Manager{
		ID:      uuid.NewString(),
		Name:    name,
		Company: rec.Text("company"),
		Office:  rec.Text("office"),
		Email:   rec.Text("email"),
		Phone:   rec.Text("phone"),
		Status:  status,
		Notes:   rec.Text("notes"),
	}
	if err := s.Managers.Upsert(ctx, m); err != nil {
		return fmt.Errorf("insert manager: %w", err)
	}
	loggerOr(s.Log).Info("manager created", zap.String("manager", m.Name))
	return nil
}

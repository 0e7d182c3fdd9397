package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/kilowatt/internal/database/repository"
)

// IngestService handles CSV account imports.
type IngestService struct {
	Accounts *repository.AccountRepo
	Log      *zap.Logger
}

type IngestResult struct {
	Imported int
	Skipped  int
	Errors   []error
}

// ImportHeader is the expected first row of an account import.
var ImportHeader = []string{"name", "customer", "type", "status", "manager", "usage_kwh", "bill"}

// ImportAccounts reads accounts from CSV with a header row matching ImportHeader.
// Rows whose name is a near duplicate of an existing or earlier row are skipped; other
// row problems are collected in the result and do not stop the import.
func (s *IngestService) ImportAccounts(ctx context.Context, r io.Reader) (IngestResult, error) {
	res := IngestResult{}
	csvr := csv.NewReader(bufio.NewReader(r))
	csvr.TrimLeadingSpace = true
	csvr.FieldsPerRecord = -1

	header, err := csvr.Read()
	if err == io.EOF {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return res, err
	}

	existing, err := s.Accounts.Names(ctx)
	if err != nil {
		return res, fmt.Errorf("list accounts: %w", err)
	}
	log := loggerOr(s.Log)
	today := time.Now().Format(time.DateOnly)

	line := 1
	for {
		line++
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := csvr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if len(rec) < len(ImportHeader) {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected %d columns", line, len(ImportHeader)))
			continue
		}
		name := strings.TrimSpace(rec[0])
		if name == "" {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: name is required", line))
			continue
		}
		if match, dup := nearDuplicate(name, existing); dup {
			log.Debug("import skipped duplicate", zap.String("account", name), zap.String("match", match))
			res.Skipped++
			continue
		}
		usage, err := parseAmount(rec[5])
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d usage_kwh: %w", line, err))
			continue
		}
		bill, err := parseAmount(rec[6])
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d bill: %w", line, err))
			continue
		}
		a := repository.Account{
			ID:              uuid.NewString(),
			Name:            name,
			CustomerName:    strings.TrimSpace(rec[1]),
			AccountType:     strings.TrimSpace(rec[2]),
			Status:          strings.TrimSpace(rec[3]),
			Manager:         nullableStr(rec[4]),
			MonthlyUsageKWh: usage,
			MonthlyBill:     bill,
			LastActivity:    today,
		}
		if err := s.Accounts.Upsert(ctx, a); err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d insert: %w", line, err))
			continue
		}
		existing = append(existing, name)
		res.Imported++
	}
	log.Info("accounts imported",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)))
	return res, nil
}

func checkHeader(header []string) error {
	for i, want := range ImportHeader {
		if i >= len(header) {
			return fmt.Errorf("header: missing %d of %d columns, expected %s",
				len(ImportHeader)-len(header), len(ImportHeader), strings.Join(ImportHeader, ","))
		}
		got := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
		if got != want {
			return fmt.Errorf("header column %d: got %q, want %q", i+1, header[i], want)
		}
	}
	return nil
}

// parseAmount accepts plain or comma-grouped numbers with an optional leading $.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

package plans

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/investment"
	"github.com/shopspring/decimal"
)

//go:embed plans.csv
var plansCSV string

var header = []string{"id", "name", "principal_options", "return_pct", "duration_days"}

// LoadPlansCSV loads the investment plan catalog from a CSV file, or from
// the embedded catalog when path is empty.
func LoadPlansCSV(path string) ([]investment.Plan, error) {
	if path == "" {
		return parsePlansCSV(strings.NewReader(plansCSV))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return parsePlansCSV(f)
}

func parsePlansCSV(r io.Reader) ([]investment.Plan, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("plans csv is empty")
	}

	seen := make(map[string]struct{})
	plans := make([]investment.Plan, 0, len(records)-1)
	for i, rec := range records {
		if i == 0 {
			if strings.Join(rec, ",") != strings.Join(header, ",") {
				return nil, fmt.Errorf("unexpected header %v", rec)
			}
			continue
		}
		p, err := parsePlan(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("line %d: duplicate plan %q", i+1, p.ID)
		}
		seen[p.ID] = struct{}{}
		plans = append(plans, p)
	}
	return plans, nil
}

func parsePlan(rec []string) (investment.Plan, error) {
	id := strings.TrimSpace(rec[0])
	if id == "" {
		return investment.Plan{}, errors.New("plan id is required")
	}
	var options []decimal.Decimal
	for _, raw := range strings.Split(rec[2], ";") {
		opt, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil || !opt.IsPositive() {
			return investment.Plan{}, fmt.Errorf("invalid principal option %q", raw)
		}
		options = append(options, opt)
	}
	ret, err := decimal.NewFromString(strings.TrimSpace(rec[3]))
	if err != nil || ret.IsNegative() {
		return investment.Plan{}, fmt.Errorf("invalid return pct %q", rec[3])
	}
	days, err := strconv.Atoi(strings.TrimSpace(rec[4]))
	if err != nil || days <= 0 {
		return investment.Plan{}, fmt.Errorf("invalid duration %q", rec[4])
	}
	return investment.Plan{
		ID:               id,
		Name:             strings.TrimSpace(rec[1]),
		PrincipalOptions: options,
		ReturnPct:        ret,
		DurationDays:     days,
	}, nil
}

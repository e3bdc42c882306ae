// Package anomaly flags expense transactions that are outliers
// against their category's historical average.
package anomaly

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/5hashankyadav/finance-tracker/internal/core"
	"github.com/5hashankyadav/finance-tracker/internal/log"
	"github.com/5hashankyadav/finance-tracker/internal/storage"
)

// MinSample is the smallest category history that can be scored;
// categories with fewer expense transactions are skipped.
const MinSample = 3

// ThresholdMultiple scales the category mean into the outlier
// threshold. This is a fixed heuristic, not a statistical model.
const ThresholdMultiple = 2

// Ledger is the store surface the detector reads from.
type Ledger interface {
	ListCategories(ctx context.Context, owner int64, kind core.Kind) ([]core.Category, error)
	ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error)
}

type Detector struct {
	store  Ledger
	logger *log.Logger
}

func NewDetector(store Ledger, logger *log.Logger) *Detector {
	return &Detector{
		store:  store,
		logger: logger.WithComponent(log.ComponentAnomaly),
	}
}

// Detect scans every expense category of the owner and returns the
// transactions whose amount strictly exceeds twice the category mean.
// The scan recomputes from the full history on every call; nothing is
// persisted between invocations. Results are concatenated per
// category, each category's flags in store order.
func (d *Detector) Detect(ctx context.Context, owner int64) ([]core.Transaction, error) {
	categories, err := d.store.ListCategories(ctx, owner, core.KindExpense)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}

	var anomalies []core.Transaction
	for _, c := range categories {
		txs, err := d.store.ListTransactions(ctx, storage.TransactionFilter{
			Owner:      owner,
			CategoryID: &c.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("list transactions for category %q: %w", c.Name, err)
		}
		if len(txs) < MinSample {
			continue
		}

		sum := decimal.Zero
		for _, t := range txs {
			sum = sum.Add(t.Amount)
		}
		mean := sum.Div(decimal.NewFromInt(int64(len(txs))))
		threshold := mean.Mul(decimal.NewFromInt(ThresholdMultiple))

		for _, t := range txs {
			if t.Amount.GreaterThan(threshold) {
				anomalies = append(anomalies, t)
			}
		}
	}

	d.logger.InfoContext(ctx, "Anomaly scan complete",
		log.FieldOwner, owner,
		"flagged", len(anomalies))
	return anomalies, nil
}

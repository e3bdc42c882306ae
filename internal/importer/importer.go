// Package importer turns raw bank-statement CSV into ledger
// transactions, auto-creating categories as it goes.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gocarina/gocsv"

	"github.com/5hashankyadav/finance-tracker/internal/cache"
	"github.com/5hashankyadav/finance-tracker/internal/core"
	"github.com/5hashankyadav/finance-tracker/internal/log"
)

// DefaultCategory names the category assigned to rows without one.
const DefaultCategory = "Other"

var (
	ErrEmptyFile      = errors.New("import file is empty")
	ErrNotUTF8        = errors.New("import file is not valid UTF-8")
	ErrMissingColumns = errors.New("import file must have Date and Amount columns")
)

// statementRow mirrors the recognized statement columns. Everything
// is read as text so a bad value fails only its own row.
type statementRow struct {
	Date        string `csv:"Date"`
	Amount      string `csv:"Amount"`
	Description string `csv:"Description"`
	Category    string `csv:"Category"`
}

// CategoryResolver resolves categories with get-or-create semantics.
type CategoryResolver interface {
	GetOrCreateCategory(ctx context.Context, owner int64, name string, kind core.Kind) (core.Category, error)
}

// Recorder commits one transaction. Imports go through the same
// recorder as manual entry so post-commit hooks fire per row.
type Recorder interface {
	RecordTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
}

// Result reports how an import batch went. There is no rollback:
// rows imported before a skipped row stay committed.
type Result struct {
	Imported int
	Skipped  int
}

type Importer struct {
	categories CategoryResolver
	recorder   Recorder
	resolved   cache.Cache[core.Category]
	logger     *log.Logger
}

// New builds an importer. resolved memoizes category get-or-create
// lookups so a statement with thousands of rows does not hit the
// store once per row for the same category.
func New(categories CategoryResolver, recorder Recorder, resolved cache.Cache[core.Category], logger *log.Logger) *Importer {
	return &Importer{
		categories: categories,
		recorder:   recorder,
		resolved:   resolved,
		logger:     logger.WithComponent(log.ComponentImport),
	}
}

// Import reads a whole statement and commits its rows sequentially.
// File-level problems (unreadable input, bad encoding, missing
// required columns, ragged CSV) fail before any row is committed.
// Row-level problems (bad date or amount) skip that row, log it, and
// keep going. Re-importing the same file creates duplicates; there is
// no dedup.
func (i *Importer) Import(ctx context.Context, user core.User, r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read import file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Result{}, ErrEmptyFile
	}
	if !utf8.Valid(data) {
		return Result{}, ErrNotUTF8
	}

	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return Result{}, fmt.Errorf("read header row: %w", err)
	}
	if !hasColumn(header, "Date") || !hasColumn(header, "Amount") {
		return Result{}, ErrMissingColumns
	}

	var rows []statementRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return Result{}, fmt.Errorf("parse csv: %w", err)
	}

	var res Result
	for idx, row := range rows {
		if err := i.importRow(ctx, user, row); err != nil {
			res.Skipped++
			i.logger.WarnContext(ctx, "Skipping statement row",
				log.FieldRow, idx+1,
				log.FieldError, err)
			continue
		}
		res.Imported++
	}

	i.logger.InfoContext(ctx, "Statement import finished",
		log.FieldOwner, user.ID,
		log.FieldImported, res.Imported,
		log.FieldSkipped, res.Skipped)
	return res, nil
}

func (i *Importer) importRow(ctx context.Context, user core.User, row statementRow) error {
	date, err := time.Parse(core.DateFormat, strings.TrimSpace(row.Date))
	if err != nil {
		return fmt.Errorf("bad date %q: %w", row.Date, core.ErrInvalidDate)
	}

	signed, err := core.ParseAmount(row.Amount)
	if err != nil {
		return fmt.Errorf("bad amount %q: %w", row.Amount, err)
	}

	// The sign decides the category kind and is then discarded;
	// stored amounts are always absolute.
	kind := core.KindForAmount(signed)

	name := strings.TrimSpace(row.Category)
	if name == "" {
		name = DefaultCategory
	}

	category, err := i.resolveCategory(ctx, user.ID, name, kind)
	if err != nil {
		return fmt.Errorf("resolve category %q: %w", name, err)
	}

	_, err = i.recorder.RecordTransaction(ctx, core.Transaction{
		Owner:       user.ID,
		CategoryID:  &category.ID,
		Amount:      signed.Abs(),
		Description: strings.TrimSpace(row.Description),
		Date:        date,
		Currency:    user.Currency,
	})
	if err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}
	return nil
}

func (i *Importer) resolveCategory(ctx context.Context, owner int64, name string, kind core.Kind) (core.Category, error) {
	key := fmt.Sprintf("%d/%s/%s", owner, kind, name)
	if i.resolved != nil {
		if c, ok := i.resolved.Get(key); ok {
			return c, nil
		}
	}
	c, err := i.categories.GetOrCreateCategory(ctx, owner, name, kind)
	if err != nil {
		return core.Category{}, err
	}
	if i.resolved != nil {
		i.resolved.Set(key, c)
	}
	return c, nil
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		h = strings.TrimPrefix(h, "\uFEFF") // tolerate a UTF-8 BOM
		if strings.TrimSpace(h) == name {
			return true
		}
	}
	return false
}

package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/5hashankyadav/finance-tracker/internal/cache"
	"github.com/5hashankyadav/finance-tracker/internal/core"
	"github.com/5hashankyadav/finance-tracker/internal/log"
)

type fakeResolver struct {
	nextID int64
	known  map[string]core.Category
	calls  int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{known: make(map[string]core.Category)}
}

func (f *fakeResolver) GetOrCreateCategory(_ context.Context, owner int64, name string, kind core.Kind) (core.Category, error) {
	f.calls++
	key := fmt.Sprintf("%d/%s/%s", owner, kind, name)
	if c, ok := f.known[key]; ok {
		return c, nil
	}
	f.nextID++
	c := core.Category{ID: f.nextID, Owner: owner, Name: name, Kind: kind}
	f.known[key] = c
	return c, nil
}

type fakeRecorder struct {
	recorded []core.Transaction
	fail     bool
}

func (f *fakeRecorder) RecordTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if f.fail {
		return core.Transaction{}, fmt.Errorf("store unavailable")
	}
	t.ID = int64(len(f.recorded) + 1)
	f.recorded = append(f.recorded, t)
	return t, nil
}

func newTestImporter(resolver *fakeResolver, recorder *fakeRecorder) *Importer {
	resolved := cache.NewLRUCache[core.Category](64, time.Minute)
	return New(resolver, recorder, resolved, log.New(log.DefaultConfig()))
}

var testUser = core.User{ID: 7, Username: "alice", Email: "alice@example.com", Currency: "USD"}

func TestImportDerivesKindAndAbsoluteAmount(t *testing.T) {
	csv := strings.Join([]string{
		"Date,Amount,Description,Category",
		"2026-03-01,-42.50,Groceries,Food",
		"2026-03-02,100,Paycheck,Salary",
		"2026-03-03,0,Zero day,Misc",
	}, "\n")

	resolver := newFakeResolver()
	recorder := &fakeRecorder{}
	res, err := newTestImporter(resolver, recorder).Import(context.Background(), testUser, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 3}, res)
	require.Len(t, recorder.recorded, 3)

	groceries := recorder.recorded[0]
	assert.Equal(t, "42.5", groceries.Amount.String(), "stored amount is absolute")
	assert.False(t, groceries.Amount.IsNegative())
	assert.Equal(t, core.KindExpense, resolver.known["7/EXPENSE/Food"].Kind)

	paycheck := recorder.recorded[1]
	assert.Equal(t, "100", paycheck.Amount.String())
	assert.Contains(t, resolver.known, "7/INCOME/Salary")

	// Zero amounts are not negative, so they classify as income.
	assert.Contains(t, resolver.known, "7/INCOME/Misc")
}

func TestImportToleratesByteOrderMark(t *testing.T) {
	csv := "\ufeff" + "Date,Amount,Description,Category\n2026-03-01,-42.50,Groceries,Food\n"

	recorder := &fakeRecorder{}
	res, err := newTestImporter(newFakeResolver(), recorder).Import(context.Background(), testUser, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1}, res)
	require.Len(t, recorder.recorded, 1)
	assert.Equal(t, "42.5", recorder.recorded[0].Amount.String())
}

func TestImportSkipsBadRowsAndContinues(t *testing.T) {
	csv := strings.Join([]string{
		"Date,Amount,Description,Category",
		"2026-03-01,10,ok,Food",
		"03/02/2026,10,bad date,Food",
		"2026-03-03,notanumber,bad amount,Food",
		"2026-03-04,20,ok again,Food",
	}, "\n")

	recorder := &fakeRecorder{}
	res, err := newTestImporter(newFakeResolver(), recorder).Import(context.Background(), testUser, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 2, Skipped: 2}, res)
	require.Len(t, recorder.recorded, 2)
	assert.Equal(t, "ok", recorder.recorded[0].Description)
	assert.Equal(t, "ok again", recorder.recorded[1].Description)
}

func TestImportDefaultsCategoryAndCurrency(t *testing.T) {
	csv := "Date,Amount\n2026-03-01,-5\n"

	resolver := newFakeResolver()
	recorder := &fakeRecorder{}
	res, err := newTestImporter(resolver, recorder).Import(context.Background(), testUser, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 1}, res)

	assert.Contains(t, resolver.known, "7/EXPENSE/Other")
	assert.Equal(t, "USD", recorder.recorded[0].Currency, "currency falls back to the account preference")
}

func TestImportValidatesFileBeforeRows(t *testing.T) {
	recorder := &fakeRecorder{}
	imp := newTestImporter(newFakeResolver(), recorder)
	ctx := context.Background()

	_, err := imp.Import(ctx, testUser, strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = imp.Import(ctx, testUser, strings.NewReader("Amount,Description\n10,no date column\n"))
	assert.ErrorIs(t, err, ErrMissingColumns)

	_, err = imp.Import(ctx, testUser, strings.NewReader("Date,Description\n2026-03-01,no amount column\n"))
	assert.ErrorIs(t, err, ErrMissingColumns)

	_, err = imp.Import(ctx, testUser, strings.NewReader("Date,Amount\n2026-03-01,\xff\xfe10\n"))
	assert.ErrorIs(t, err, ErrNotUTF8)

	assert.Empty(t, recorder.recorded, "no row commits before file validation passes")
}

func TestImportMemoizesCategoryResolution(t *testing.T) {
	var rows []string
	rows = append(rows, "Date,Amount,Category")
	for i := 0; i < 10; i++ {
		rows = append(rows, fmt.Sprintf("2026-03-%02d,-10,Food", i+1))
	}

	resolver := newFakeResolver()
	res, err := newTestImporter(resolver, &fakeRecorder{}).Import(context.Background(), testUser, strings.NewReader(strings.Join(rows, "\n")))
	require.NoError(t, err)
	assert.Equal(t, 10, res.Imported)
	assert.Equal(t, 1, resolver.calls, "repeated categories resolve through the cache")
}

func TestImportRecorderFailureSkipsRow(t *testing.T) {
	csv := "Date,Amount\n2026-03-01,10\n2026-03-02,20\n"
	recorder := &fakeRecorder{fail: true}
	res, err := newTestImporter(newFakeResolver(), recorder).Import(context.Background(), testUser, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 2}, res)
}

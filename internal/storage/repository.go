// Package storage implements the durable ledger store on SQLite.
//
// Rows are scoped to an owning user throughout; no query crosses user
// boundaries. Monetary amounts are stored as decimal text and summed
// in Go, never with SQL float arithmetic.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/5hashankyadav/finance-tracker/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

// TransactionFilter narrows transaction queries. Zero values mean
// "no constraint"; Kind filtering joins through categories, so
// uncategorized transactions never match a kind filter.
type TransactionFilter struct {
	Owner      int64
	CategoryID *int64
	Kind       core.Kind
	Currency   string
	From       time.Time
	To         time.Time
	Limit      int
	Descending bool
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateUser inserts a new account record.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, email, currency string) (core.User, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, currency, created_at) VALUES (?, ?, ?, ?)`,
		username, email, currency, now)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}
	return core.User{ID: id, Username: username, Email: email, Currency: currency}, nil
}

// GetUser returns the user with the given id.
func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, currency FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.Currency)
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername returns nil without error when the user does not
// exist.
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, currency FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.Currency)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return &u, nil
}

// UpdateUser persists profile changes (email, currency preference).
func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = ?, currency = ? WHERE id = ?`,
		u.Email, u.Currency, u.ID)
	if err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return nil
}

// GetOrCreateCategory resolves a category by its (owner, name, kind)
// identity, creating it when absent. The insert and the read run in
// one database transaction so concurrent callers converge on a single
// row.
func (r *SQLiteRepository) GetOrCreateCategory(ctx context.Context, owner int64, name string, kind core.Kind) (core.Category, error) {
	c := core.Category{Owner: owner, Name: name, Kind: kind}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Category{}, fmt.Errorf("begin get-or-create: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO categories (owner, name, kind) VALUES (?, ?, ?)
		 ON CONFLICT (owner, name, kind) DO NOTHING`,
		owner, name, string(kind))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE owner = ? AND name = ? AND kind = ?`,
		owner, name, string(kind)).Scan(&c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("read category back: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Category{}, fmt.Errorf("commit get-or-create: %w", err)
	}
	return c, nil
}

// GetCategory returns nil without error when no such category exists
// for the owner.
func (r *SQLiteRepository) GetCategory(ctx context.Context, owner, id int64) (*core.Category, error) {
	var c core.Category
	var kind string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner, name, kind FROM categories WHERE owner = ? AND id = ?`,
		owner, id).Scan(&c.ID, &c.Owner, &c.Name, &kind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	c.Kind = core.Kind(kind)
	return &c, nil
}

// ListCategories lists an owner's categories, optionally restricted
// to one kind, in insertion order.
func (r *SQLiteRepository) ListCategories(ctx context.Context, owner int64, kind core.Kind) ([]core.Category, error) {
	query := `SELECT id, owner, name, kind FROM categories WHERE owner = ?`
	args := []any{owner}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		var k string
		if err := rows.Scan(&c.ID, &c.Owner, &c.Name, &k); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Kind = core.Kind(k)
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCategory removes a category; referencing transactions are
// kept and their category link is nulled by the schema.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, owner, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	return nil
}

// CreateTransaction inserts a ledger entry and returns it with its
// assigned id and creation time.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t.CreatedAt = time.Now().UTC()
	var categoryID any
	if t.CategoryID != nil {
		categoryID = *t.CategoryID
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (owner, category_id, amount, description, date, currency, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Owner, categoryID, t.Amount.String(), t.Description,
		t.Date.Format(core.DateFormat), t.Currency, t.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	t.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"owner", t.Owner,
		"amount", t.Amount.String(),
		"currency", t.Currency,
		"date", t.Date.Format(core.DateFormat))

	return t, nil
}

// UpdateTransaction rewrites the editable fields of an owned entry.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	var categoryID any
	if t.CategoryID != nil {
		categoryID = *t.CategoryID
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET category_id = ?, amount = ?, description = ?, date = ?, currency = ?
		 WHERE owner = ? AND id = ?`,
		categoryID, t.Amount.String(), t.Description,
		t.Date.Format(core.DateFormat), t.Currency, t.Owner, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return nil
}

// DeleteTransaction removes an owned entry.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, owner, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

// ListTransactions returns entries matching the filter. ISO dates
// compare correctly as text, so window bounds are plain string
// comparisons.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	query, args := buildTransactionQuery(
		`SELECT t.id, t.owner, t.category_id, t.amount, t.description, t.date, t.currency, t.created_at`, f)
	if f.Descending {
		query += ` ORDER BY t.date DESC, t.id DESC`
	} else {
		query += ` ORDER BY t.date, t.id`
	}
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SumAmount totals the amounts of matching entries. Missing matches
// sum to zero, never an error.
func (r *SQLiteRepository) SumAmount(ctx context.Context, f TransactionFilter) (decimal.Decimal, error) {
	query, args := buildTransactionQuery(`SELECT t.amount`, f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum transactions: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("scan amount: %w", err)
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("stored amount %q: %w", raw, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

// CreateBudget inserts a spending ceiling; the month collapses to the
// first of the month before it is stored.
func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	b.Month = core.MonthStart(b.Month)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (owner, category_id, amount, month) VALUES (?, ?, ?, ?)`,
		b.Owner, b.CategoryID, b.Amount.String(), b.Month.Format(core.DateFormat))
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget insert id: %w", err)
	}
	b.ID = id
	return b, nil
}

// FindBudget returns nil without error when no budget is configured
// for the triple.
func (r *SQLiteRepository) FindBudget(ctx context.Context, owner, categoryID int64, month time.Time) (*core.Budget, error) {
	month = core.MonthStart(month)
	var b core.Budget
	var amount, monthStr string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner, category_id, amount, month FROM budgets
		 WHERE owner = ? AND category_id = ? AND month = ?`,
		owner, categoryID, month.Format(core.DateFormat)).
		Scan(&b.ID, &b.Owner, &b.CategoryID, &amount, &monthStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find budget: %w", err)
	}
	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("stored budget amount %q: %w", amount, err)
	}
	if b.Month, err = time.Parse(core.DateFormat, monthStr); err != nil {
		return nil, fmt.Errorf("stored budget month %q: %w", monthStr, err)
	}
	return &b, nil
}

// ListBudgets returns an owner's budgets, most recent month first.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, owner int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner, category_id, amount, month FROM budgets
		 WHERE owner = ? ORDER BY month DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var amount, monthStr string
		if err := rows.Scan(&b.ID, &b.Owner, &b.CategoryID, &amount, &monthStr); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("stored budget amount %q: %w", amount, err)
		}
		if b.Month, err = time.Parse(core.DateFormat, monthStr); err != nil {
			return nil, fmt.Errorf("stored budget month %q: %w", monthStr, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func buildTransactionQuery(selectClause string, f TransactionFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(selectClause)
	sb.WriteString(` FROM transactions t`)
	if f.Kind != "" {
		sb.WriteString(` JOIN categories c ON c.id = t.category_id`)
	}
	sb.WriteString(` WHERE t.owner = ?`)
	args := []any{f.Owner}

	if f.Kind != "" {
		sb.WriteString(` AND c.kind = ?`)
		args = append(args, string(f.Kind))
	}
	if f.CategoryID != nil {
		sb.WriteString(` AND t.category_id = ?`)
		args = append(args, *f.CategoryID)
	}
	if f.Currency != "" {
		sb.WriteString(` AND t.currency = ?`)
		args = append(args, f.Currency)
	}
	if !f.From.IsZero() {
		sb.WriteString(` AND t.date >= ?`)
		args = append(args, f.From.Format(core.DateFormat))
	}
	if !f.To.IsZero() {
		sb.WriteString(` AND t.date <= ?`)
		args = append(args, f.To.Format(core.DateFormat))
	}
	return sb.String(), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var categoryID sql.NullInt64
	var amount, date, createdAt string
	if err := row.Scan(&t.ID, &t.Owner, &categoryID, &amount, &t.Description, &date, &t.Currency, &createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	if categoryID.Valid {
		id := categoryID.Int64
		t.CategoryID = &id
	}
	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.Transaction{}, fmt.Errorf("stored amount %q: %w", amount, err)
	}
	if t.Date, err = time.Parse(core.DateFormat, date); err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return core.Transaction{}, fmt.Errorf("stored created_at %q: %w", createdAt, err)
	}
	return t, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lib/pq"

	"saldo/internal/core"
)

const transactionColumns = `id, owner_id, kind, amount, occurred_on, description, category_id,
	is_credit_card, card_label, recurrence_group_id, recurrence_count`

// SQLRepository implements Store on top of database/sql for SQLite and
// PostgreSQL.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
}

// SQLiteDSN builds the connection string used for a database file.
func SQLiteDSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"
}

func NewSQLiteRepository(dbPath string) (*SQLRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := SQLiteDSN(dbPath)
	db, err := sql.Open(string(SQLite), dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one writer at a time; sqlite serializes writes anyway
	db.SetMaxOpenConns(1)

	return open(db, SQLite, dsn)
}

func NewPostgresRepository(dsn string) (*SQLRepository, error) {
	db, err := sql.Open(string(Postgres), dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	return open(db, Postgres, dsn)
}

func open(db *sql.DB, d Dialect, dsn string) (*SQLRepository, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLRepository{db: db, dialect: d}, nil
}

func (r *SQLRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLRepository) q(query string) string {
	return r.dialect.rebind(query)
}

func (r *SQLRepository) FindOwnerByEmail(ctx context.Context, email string) (core.Owner, error) {
	var o core.Owner
	err := r.db.QueryRowContext(ctx, r.q(`SELECT id, email FROM owners WHERE email = ?`), email).
		Scan(&o.ID, &o.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Owner{}, ErrNotFound
	}
	if err != nil {
		return core.Owner{}, fmt.Errorf("find owner: %w", err)
	}
	return o, nil
}

func (r *SQLRepository) InsertOwner(ctx context.Context, o core.Owner) error {
	_, err := r.db.ExecContext(ctx, r.q(`INSERT INTO owners (id, email) VALUES (?, ?)`), o.ID, o.Email)
	if err != nil {
		return fmt.Errorf("insert owner: %w", classify(err))
	}
	slog.InfoContext(ctx, "Owner created", "owner_id", o.ID)
	return nil
}

func (r *SQLRepository) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		r.q(`SELECT id, owner_id, name FROM categories WHERE owner_id = ? ORDER BY name ASC, id ASC`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	cats := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (r *SQLRepository) InsertCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx,
		r.q(`INSERT INTO categories (id, owner_id, name) VALUES (?, ?, ?)`), c.ID, c.OwnerID, c.Name)
	if err != nil {
		return fmt.Errorf("insert category: %w", classify(err))
	}
	return nil
}

func (r *SQLRepository) DeleteCategory(ctx context.Context, ownerID, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			r.q(`UPDATE transactions SET category_id = NULL WHERE owner_id = ? AND category_id = ?`),
			ownerID, id); err != nil {
			return fmt.Errorf("clear category references: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			r.q(`DELETE FROM categories WHERE owner_id = ? AND id = ?`), ownerID, id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

func (r *SQLRepository) InsertTransactions(ctx context.Context, txs []core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if r.dialect == Postgres {
			return copyTransactions(ctx, tx, txs)
		}
		return insertTransactions(ctx, tx, txs)
	})
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "Transactions saved", "count", len(txs), "group_id", txs[0].RecurrenceGroupID)
	return nil
}

func insertTransactions(ctx context.Context, tx *sql.Tx, txs []core.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		if _, err := stmt.ExecContext(ctx, rowArgs(t)...); err != nil {
			return fmt.Errorf("insert transaction: %w", classify(err))
		}
	}
	return nil
}

func copyTransactions(ctx context.Context, tx *sql.Tx, txs []core.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("transactions",
		"id", "owner_id", "kind", "amount", "occurred_on", "description", "category_id",
		"is_credit_card", "card_label", "recurrence_group_id", "recurrence_count"))
	if err != nil {
		return fmt.Errorf("prepare copy in: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		if _, err := stmt.ExecContext(ctx, rowArgs(t)...); err != nil {
			return fmt.Errorf("execute copy in: %w", classify(err))
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("finalize copy in: %w", classify(err))
	}
	return nil
}

func rowArgs(t core.Transaction) []any {
	return []any{
		t.ID,
		t.OwnerID,
		t.Kind.String(),
		core.FormatAmount(t.Amount),
		t.Date,
		nullString(t.Description),
		nullString(t.CategoryID),
		t.IsCreditCard,
		nullString(t.CardLabel),
		nullString(t.RecurrenceGroupID),
		sql.NullInt64{Int64: int64(t.RecurrenceCount), Valid: t.RecurrenceGroupID != ""},
	}
}

func (r *SQLRepository) QueryTransactions(ctx context.Context, ownerID string, f core.TransactionFilter) ([]core.Transaction, error) {
	var (
		where = []string{"owner_id = ?", "occurred_on >= ?", "occurred_on < ?"}
		args  = []any{ownerID, core.Date{Time: f.Window.Start}, core.Date{Time: f.Window.End}}
	)
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.CreditOnly {
		where = append(where, "is_credit_card = ?")
		args = append(args, true)
	}
	if f.RecurringOnly {
		where = append(where, "recurrence_group_id IS NOT NULL")
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY occurred_on DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	return txs, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t                                   core.Transaction
		kind                                string
		description, category, label, group sql.NullString
		count                               sql.NullInt64
	)
	err := rows.Scan(&t.ID, &t.OwnerID, &kind, &t.Amount, &t.Date, &description, &category,
		&t.IsCreditCard, &label, &group, &count)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Kind = core.Kind(kind)
	t.Description = description.String
	t.CategoryID = category.String
	t.CardLabel = label.String
	t.RecurrenceGroupID = group.String
	t.RecurrenceCount = int(count.Int64)
	return t, nil
}

func (r *SQLRepository) DeleteTransaction(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.q(`DELETE FROM transactions WHERE owner_id = ? AND id = ?`), ownerID, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) DeleteTransactionGroup(ctx context.Context, ownerID, groupID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		r.q(`DELETE FROM transactions WHERE owner_id = ? AND recurrence_group_id = ?`), ownerID, groupID)
	if err != nil {
		return 0, fmt.Errorf("delete transaction group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete transaction group: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", classify(err))
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

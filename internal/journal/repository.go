package journal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrations embed.FS

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Kind string

const (
	KindSale Kind = "sale"
	KindVoid Kind = "void"
)

var ErrUnknownDriver = errors.New("unknown journal driver")

// Entry is one committed sale or void as recorded locally.
type Entry struct {
	Kind          Kind
	TransactionID string
	ReceiptNumber string
	OutletID      string
	ShiftID       string
	Total         decimal.Decimal
	Payload       []byte
	RecordedAt    time.Time
}

type ShiftSummary struct {
	ShiftID    string       `json:"shift_id"`
	Sales      int          `json:"sales"`
	SalesTotal domain.Money `json:"sales_total"`
	Voids      int          `json:"voids"`
	VoidsTotal domain.Money `json:"voids_total"`
}

type RepoInterface interface {
	Record(ctx context.Context, entry Entry) (bool, error)
	ShiftSummary(ctx context.Context, shiftID string) (*ShiftSummary, error)
	Ping(ctx context.Context) error
	Close() error
}

// Repository is the local sales journal over database/sql.
type Repository struct {
	db     *sql.DB
	driver string
}

// Open connects to the journal database and applies pending migrations.
func Open(ctx context.Context, driver, dsn string) (*Repository, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// one writer, and :memory: databases are per connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	r := &Repository{db: db, driver: driver}
	if err := r.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) RunMigrations() error {
	var (
		instance database.Driver
		err      error
	)
	switch r.driver {
	case DriverSQLite:
		instance, err = sqlite.WithInstance(r.db, &sqlite.Config{})
	case DriverPostgres:
		instance, err = postgres.WithInstance(r.db, &postgres.Config{})
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	sub, err := fs.Sub(migrations, "migrations/"+r.driver)
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, r.driver, instance)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// Record inserts entry and reports whether it was new. Repeats of a kind and
// transaction id are ignored.
func (r *Repository) Record(ctx context.Context, entry Entry) (bool, error) {
	query := `
		INSERT INTO journal_entries
			(kind, transaction_id, receipt_number, outlet_id, shift_id, total_cents, payload, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (kind, transaction_id) DO NOTHING
	`

	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, query,
		string(entry.Kind),
		entry.TransactionID,
		entry.ReceiptNumber,
		entry.OutletID,
		entry.ShiftID,
		toCents(entry.Total),
		string(entry.Payload),
		entry.RecordedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert journal entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (r *Repository) ShiftSummary(ctx context.Context, shiftID string) (*ShiftSummary, error) {
	query := `
		SELECT kind, COUNT(*), COALESCE(SUM(total_cents), 0)
		FROM journal_entries
		WHERE shift_id = $1
		GROUP BY kind
	`

	rows, err := r.db.QueryContext(ctx, query, shiftID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift summary: %w", err)
	}
	defer rows.Close()

	summary := &ShiftSummary{
		ShiftID:    shiftID,
		SalesTotal: domain.NewMoney(decimal.Zero),
		VoidsTotal: domain.NewMoney(decimal.Zero),
	}
	for rows.Next() {
		var (
			kind  string
			count int
			cents int64
		)
		if err := rows.Scan(&kind, &count, &cents); err != nil {
			return nil, fmt.Errorf("failed to scan shift summary: %w", err)
		}
		switch Kind(kind) {
		case KindSale:
			summary.Sales = count
			summary.SalesTotal = fromCents(cents)
		case KindVoid:
			summary.Voids = count
			summary.VoidsTotal = fromCents(cents)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return summary, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func toCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func fromCents(cents int64) domain.Money {
	return domain.NewMoney(decimal.New(cents, -2))
}

package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Table names one of the journal's five tables.
type Table string

const (
	TableTrades     Table = "trades"
	TableForecasts  Table = "ai_forecasts"
	TableMarketData Table = "market_data"
	TableStrategies Table = "trading_strategies"
	TableSignals    Table = "trade_signals"
)

var allTables = []Table{TableTrades, TableForecasts, TableMarketData, TableStrategies, TableSignals}

// Tables returns every table in schema order.
func Tables() []Table {
	return append([]Table(nil), allTables...)
}

func (t Table) valid() bool {
	for _, known := range allTables {
		if t == known {
			return true
		}
	}
	return false
}

// Option configures a DB.
type Option func(*DB)

// WithClock replaces the wall clock used for timestamps and "active" checks.
func WithClock(now func() time.Time) Option {
	return func(d *DB) {
		d.now = now
	}
}

// DB owns the single connection to the embedded journal store.
type DB struct {
	dsn string
	log *zap.Logger
	now func() time.Time

	mu  sync.Mutex
	gdb *gorm.DB
}

// New prepares a DB for the given configuration. Nothing is opened until Open.
func New(cfg config.Database, log *zap.Logger, opts ...Option) *DB {
	d := &DB{
		dsn: cfg.DSN,
		log: log.Named("database"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDatabase creates a DB and opens it.
func NewDatabase(cfg config.Database, log *zap.Logger, opts ...Option) (*DB, error) {
	d := New(cfg, log, opts...)
	if err := d.Open(); err != nil {
		return nil, err
	}
	return d, nil
}

// Open connects to the store and migrates the schema. Calling it again on an
// open DB is a no-op; a failed Open can be retried.
func (d *DB) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.gdb != nil {
		return nil
	}

	gdb, err := gorm.Open(sqlite.Open(d.dsn), &gorm.Config{
		NowFunc:        d.Now,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return &StorageUnavailableError{DSN: d.dsn, Err: fmt.Errorf("failed to connect to database: %w", err)}
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return &StorageUnavailableError{DSN: d.dsn, Err: err}
	}
	// SQLite allows one writer, and an in-memory DSN is private to its connection.
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(gdb); err != nil {
		_ = sqlDB.Close()
		return &StorageUnavailableError{DSN: d.dsn, Err: err}
	}

	d.gdb = gdb
	d.log.Info("Journal store opened", zap.String("dsn", d.dsn))
	return nil
}

// AutoMigrate creates the journal tables and their indexes.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Trade{},
		&models.AIForecast{},
		&models.MarketData{},
		&models.TradingStrategy{},
		&models.TradeSignal{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

// Close releases the connection. The DB may be opened again afterwards.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.gdb == nil {
		return nil
	}
	sqlDB, err := d.gdb.DB()
	if err != nil {
		return err
	}
	d.gdb = nil
	return sqlDB.Close()
}

// Now returns the store clock's current time in UTC.
func (d *DB) Now() time.Time {
	return d.now().UTC()
}

// Table returns a fresh handle scoped to one table. Handles must not be
// reused across queries since conditions accumulate on them.
func (d *DB) Table(name Table) (*gorm.DB, error) {
	gdb, err := d.conn()
	if err != nil {
		return nil, err
	}
	if !name.valid() {
		return nil, &StorageError{Operation: "Table", Table: string(name), Err: errors.New("unknown table")}
	}
	return gdb.Table(string(name)), nil
}

func (d *DB) conn() (*gorm.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.gdb == nil {
		return nil, &StorageUnavailableError{DSN: d.dsn, Err: errors.New("database is not open")}
	}
	return d.gdb, nil
}

func isValidation(err error) bool {
	return errors.Is(err, models.ErrValidation)
}

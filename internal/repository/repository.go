// Package repository implements the journal's entity operations, one
// repository per table, and the bulk export/import/clear operations.
//
// Individual operations are not wrapped in a shared transaction; callers that
// need several operations to be atomic use Repositories.Transaction.
package repository

import (
	"errors"

	"trade-journal-go/internal/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories bundles the five entity repositories over one store.
type Repositories struct {
	db  *database.DB
	h   database.Handles
	log *zap.Logger

	Trades     *TradeRepository
	Forecasts  *ForecastRepository
	MarketData *MarketDataRepository
	Strategies *StrategyRepository
	Signals    *SignalRepository
}

// New wires every repository to db. The DB must be opened by the caller.
func New(db *database.DB, log *zap.Logger) *Repositories {
	return &Repositories{
		db:         db,
		h:          db,
		log:        log.Named("backup"),
		Trades:     NewTradeRepository(db, log),
		Forecasts:  NewForecastRepository(db, log),
		MarketData: NewMarketDataRepository(db, log),
		Strategies: NewStrategyRepository(db, log),
		Signals:    NewSignalRepository(db, log),
	}
}

// WithTx returns repositories that run every operation inside tx. They are
// only valid until the transaction's function returns.
func (r *Repositories) WithTx(tx *database.Tx) *Repositories {
	return &Repositories{
		db:         r.db,
		h:          tx,
		log:        r.log,
		Trades:     &TradeRepository{base: r.Trades.base.on(tx)},
		Forecasts:  &ForecastRepository{base: r.Forecasts.base.on(tx)},
		MarketData: &MarketDataRepository{base: r.MarketData.base.on(tx)},
		Strategies: &StrategyRepository{base: r.Strategies.base.on(tx)},
		Signals:    &SignalRepository{base: r.Signals.base.on(tx)},
	}
}

// Transaction runs fn with repositories bound to one transaction over every
// table. It commits when fn returns nil and rolls back otherwise. Calling the
// receiver's own repositories from fn blocks, since the transaction holds the
// store's only connection; use the ones fn is given.
func (r *Repositories) Transaction(fn func(r *Repositories) error) error {
	return r.h.Transaction(database.Tables(), func(tx *database.Tx) error {
		return fn(r.WithTx(tx))
	})
}

// base holds what every entity repository shares. db supplies the clock;
// h supplies query handles and is either db or an open transaction.
type base struct {
	db       *database.DB
	h        database.Handles
	log      *zap.Logger
	table    database.Table
	resource string
}

func newBase(db *database.DB, log *zap.Logger, table database.Table, resource string) base {
	return base{db: db, h: db, log: log.Named(string(table)), table: table, resource: resource}
}

func (b base) on(h database.Handles) base {
	b.h = h
	return b
}

func (b base) wrap(op string, err error) error {
	return database.WrapStorageError(op, b.table, err)
}

func insert[T any](b base, row *T) error {
	h, err := b.h.Table(b.table)
	if err != nil {
		return err
	}
	return b.wrap("Add", h.Create(row).Error)
}

// get returns nil, nil when the row does not exist.
func get[T any](b base, id uint) (*T, error) {
	h, err := b.h.Table(b.table)
	if err != nil {
		return nil, err
	}
	var row T
	err = h.First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, b.wrap("Get", err)
	}
	return &row, nil
}

// find runs a read query; scope may add conditions, ordering and limits.
// The result is never nil.
func find[T any](b base, op string, scope func(*gorm.DB) *gorm.DB) ([]T, error) {
	h, err := b.h.Table(b.table)
	if err != nil {
		return nil, err
	}
	if scope != nil {
		h = scope(h)
	} else {
		h = h.Order("id")
	}
	rows := []T{}
	if err := h.Find(&rows).Error; err != nil {
		return nil, b.wrap(op, err)
	}
	return rows, nil
}

// update reads the stored row, lets check merge and validate it, then writes
// only the supplied columns, all in one transaction. A missing row is a
// *database.NotFoundError.
func update[T any](b base, id uint, fields map[string]interface{}, check func(current *T) error) error {
	return b.h.Transaction([]database.Table{b.table}, func(tx *database.Tx) error {
		h, err := tx.Table(b.table)
		if err != nil {
			return err
		}
		var current T
		err = h.First(&current, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.NewNotFoundErrorWithID(b.resource, id)
		}
		if err != nil {
			return b.wrap("Update", err)
		}
		if check != nil {
			if err := check(&current); err != nil {
				return err
			}
		}
		if len(fields) == 0 {
			return nil
		}

		h, err = tx.Table(b.table)
		if err != nil {
			return err
		}
		return b.wrap("Update", h.Model(new(T)).Where("id = ?", id).Updates(fields).Error)
	})
}

// remove deletes by id; a missing id is not an error.
func remove[T any](b base, id uint) error {
	h, err := b.h.Table(b.table)
	if err != nil {
		return err
	}
	return b.wrap("Delete", h.Delete(new(T), id).Error)
}

package database

import (
	"errors"

	"gorm.io/gorm"
)

// Handles hands out per-table query handles and opens scoped transactions.
// Both *DB and an open *Tx satisfy it, so code written against Handles runs
// the same inside or outside a transaction.
type Handles interface {
	Table(name Table) (*gorm.DB, error)
	Transaction(tables []Table, fn func(tx *Tx) error) error
}

var (
	_ Handles = (*DB)(nil)
	_ Handles = (*Tx)(nil)
)

// Tx is a scoped transaction over a fixed set of tables.
type Tx struct {
	db     *gorm.DB
	tables map[Table]struct{}
}

// Table returns a handle for name inside the transaction. Only tables
// acquired when the transaction started are available.
func (tx *Tx) Table(name Table) (*gorm.DB, error) {
	if _, ok := tx.tables[name]; !ok {
		return nil, &StorageError{Operation: "Tx.Table", Table: string(name), Err: errors.New("table not acquired by this transaction")}
	}
	return tx.db.Table(string(name)), nil
}

// Transaction runs fn inside one read-write transaction spanning tables.
// It commits when fn returns nil and rolls back on an error or a panic.
func (d *DB) Transaction(tables []Table, fn func(tx *Tx) error) error {
	gdb, err := d.conn()
	if err != nil {
		return err
	}

	scope := make(map[Table]struct{}, len(tables))
	for _, t := range tables {
		if !t.valid() {
			return &StorageError{Operation: "Transaction", Table: string(t), Err: errors.New("unknown table")}
		}
		scope[t] = struct{}{}
	}

	var fnErr error
	err = gdb.Transaction(func(g *gorm.DB) error {
		fnErr = fn(&Tx{db: g, tables: scope})
		return fnErr
	})
	if fnErr != nil {
		// Already rolled back; hand the caller its own error untouched.
		return fnErr
	}
	// Begin or commit failed.
	return WrapStorageError("Transaction", "", err)
}

// Transaction runs fn in a nested scope of tx, backed by a savepoint. An error
// from fn rolls back only the nested work; tx stays usable. The nested scope
// may only name tables tx already holds.
func (tx *Tx) Transaction(tables []Table, fn func(tx *Tx) error) error {
	scope := make(map[Table]struct{}, len(tables))
	for _, t := range tables {
		if _, ok := tx.tables[t]; !ok {
			return &StorageError{Operation: "Tx.Transaction", Table: string(t), Err: errors.New("table not acquired by this transaction")}
		}
		scope[t] = struct{}{}
	}

	var fnErr error
	err := tx.db.Transaction(func(g *gorm.DB) error {
		fnErr = fn(&Tx{db: g, tables: scope})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return WrapStorageError("Tx.Transaction", "", err)
}

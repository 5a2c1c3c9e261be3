package storage

// sqlite.go — ledger sobre SQLite (pure Go, sin CGo).
//
// SQLite es single-writer: el pool se limita a una conexión, así cada
// transacción de commit se ejecuta sola y el check-then-set de la resolución
// no necesita FOR UPDATE.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteLedger implementa ports.Ledger usando SQLite.
type SQLiteLedger struct {
	*sqlLedger
}

// NewSQLiteLedger abre (o crea) la base de datos en la ruta dada y aplica el schema.
// path puede ser ":memory:" para tests.
func NewSQLiteLedger(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteLedger: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteLedger: pragmas: %w", err)
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteLedger: apply schema: %w", err)
	}

	return &SQLiteLedger{sqlLedger: &sqlLedger{db: db, d: sqliteDialect}}, nil
}

// Ping comprueba que la base de datos responde (usado por /healthz).
func (s *SQLiteLedger) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var sqliteDialect = dialect{
	name:      "sqlite",
	forUpdate: "",
	rebind:    func(q string) string { return q },
	isUniqueViolation: func(err error) bool {
		return strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
}

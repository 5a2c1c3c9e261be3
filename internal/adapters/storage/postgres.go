package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// PostgresLedger implementa ports.Ledger sobre Postgres.
// Las filas de mercado y usuario se bloquean con FOR UPDATE dentro de cada commit.
type PostgresLedger struct {
	*sqlLedger
}

// NewPostgresLedger conecta con dsn, comprueba la conexión y aplica el schema.
func NewPostgresLedger(dsn string) (*PostgresLedger, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage.NewPostgresLedger: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewPostgresLedger: ping: %w", err)
	}
	if _, err := db.Exec(ledgerSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewPostgresLedger: apply schema: %w", err)
	}
	return &PostgresLedger{sqlLedger: &sqlLedger{db: db, d: postgresDialect}}, nil
}

// Ping comprueba que la base de datos responde (usado por /healthz).
func (p *PostgresLedger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// pgUniqueViolation es el SQLSTATE de violación de clave única.
const pgUniqueViolation = "23505"

var postgresDialect = dialect{
	name:      "postgres",
	forUpdate: " FOR UPDATE",
	rebind:    rebindDollar,
	isUniqueViolation: func(err error) bool {
		var pqErr *pq.Error
		return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
	},
}

// rebindDollar reescribe los placeholders `?` como $1, $2…
// Las queries del ledger no contienen `?` dentro de literales.
func rebindDollar(q string) string {
	var sb strings.Builder
	sb.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

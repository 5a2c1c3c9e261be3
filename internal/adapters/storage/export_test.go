package storage

import "context"

// Truncate vacía las tablas del ledger; solo para la suite de Postgres,
// que comparte base de datos entre subtests.
func (l *sqlLedger) Truncate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM bets; DELETE FROM markets; DELETE FROM users;`)
	return err
}

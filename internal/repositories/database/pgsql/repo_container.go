package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerkeep/ledgerkeep/internal/core/services"
)

// NewRepositoryProvider builds the full pgsql-backed repository set from a
// single connection pool.
func NewRepositoryProvider(pool *pgxpool.Pool) services.RepositoryProvider {
	return services.RepositoryProvider{
		Account:   NewPgxAccountRepository(pool),
		Voucher:   NewPgxVoucherRepository(pool),
		Reference: NewPgxReferenceRepository(pool),
	}
}

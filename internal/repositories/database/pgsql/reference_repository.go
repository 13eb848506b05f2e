package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerkeep/ledgerkeep/internal/apperrors"
	portsrepo "github.com/ledgerkeep/ledgerkeep/internal/core/ports/repositories"
)

// PgxReferenceRepository resolves counterparty, certificate and asset ids.
// These entities are maintained by other flows; the ledger only needs
// existence checks when validating voucher links.
type PgxReferenceRepository struct {
	BaseRepository
}

// NewPgxReferenceRepository creates a new repository for reference lookups.
func NewPgxReferenceRepository(pool *pgxpool.Pool) portsrepo.ReferenceReader {
	return &PgxReferenceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReferenceReader = (*PgxReferenceRepository)(nil)

// CounterpartyExists reports whether a counterparty id resolves within the tenant.
func (r *PgxReferenceRepository) CounterpartyExists(ctx context.Context, tenantID string, counterpartyID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM counterparties WHERE tenant_id = $1 AND counterparty_id = $2);`
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, tenantID, counterpartyID).Scan(&exists); err != nil {
		return false, apperrors.NewAppError(500, "failed to check counterparty "+counterpartyID, err)
	}
	return exists, nil
}

// MissingCertificateIDs returns the subset of ids that do not resolve.
func (r *PgxReferenceRepository) MissingCertificateIDs(ctx context.Context, tenantID string, certificateIDs []string) ([]string, error) {
	return r.missingIDs(ctx, `
		SELECT given.id
		FROM unnest($2::text[]) AS given(id)
		WHERE NOT EXISTS (
			SELECT 1 FROM certificates c WHERE c.tenant_id = $1 AND c.certificate_id = given.id
		);
	`, tenantID, certificateIDs)
}

// MissingAssetIDs returns the subset of ids that do not resolve.
func (r *PgxReferenceRepository) MissingAssetIDs(ctx context.Context, tenantID string, assetIDs []string) ([]string, error) {
	return r.missingIDs(ctx, `
		SELECT given.id
		FROM unnest($2::text[]) AS given(id)
		WHERE NOT EXISTS (
			SELECT 1 FROM assets a WHERE a.tenant_id = $1 AND a.asset_id = given.id
		);
	`, tenantID, assetIDs)
}

// MissingVoucherIDs returns the subset of ids that do not resolve. Used when
// validating reverse-relationship links before they are written.
func (r *PgxReferenceRepository) MissingVoucherIDs(ctx context.Context, tenantID string, voucherIDs []string) ([]string, error) {
	return r.missingIDs(ctx, `
		SELECT given.id
		FROM unnest($2::text[]) AS given(id)
		WHERE NOT EXISTS (
			SELECT 1 FROM vouchers v WHERE v.tenant_id = $1 AND v.voucher_id = given.id
		);
	`, tenantID, voucherIDs)
}

func (r *PgxReferenceRepository) missingIDs(ctx context.Context, query string, tenantID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.Pool.Query(ctx, query, tenantID, ids)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to resolve reference ids", err)
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan reference id row", err)
		}
		missing = append(missing, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating reference id rows", err)
	}
	return missing, nil
}

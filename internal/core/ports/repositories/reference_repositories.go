package repositories

import "context"

// ReferenceReader resolves the entities a voucher may point at.
// Counterparties, certificates and assets are owned by other flows; the
// ledger core only checks that the ids it is handed actually exist. Voucher
// ids are checked here too when they appear as reverse-relationship links.
type ReferenceReader interface {
	// CounterpartyExists reports whether a counterparty id resolves within the tenant.
	CounterpartyExists(ctx context.Context, tenantID string, counterpartyID string) (bool, error)

	// MissingCertificateIDs returns the subset of ids that do not resolve.
	MissingCertificateIDs(ctx context.Context, tenantID string, certificateIDs []string) ([]string, error)

	// MissingAssetIDs returns the subset of ids that do not resolve.
	MissingAssetIDs(ctx context.Context, tenantID string, assetIDs []string) ([]string, error)

	// MissingVoucherIDs returns the subset of ids that do not resolve.
	MissingVoucherIDs(ctx context.Context, tenantID string, voucherIDs []string) ([]string, error)
}

package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerkeep/ledgerkeep/internal/apperrors"
	"github.com/ledgerkeep/ledgerkeep/internal/core/domain"
	portsrepo "github.com/ledgerkeep/ledgerkeep/internal/core/ports/repositories"
	"github.com/ledgerkeep/ledgerkeep/internal/models"
	"github.com/ledgerkeep/ledgerkeep/internal/utils/mapping"
	"github.com/ledgerkeep/ledgerkeep/internal/utils/pagination"
)

// PgxVoucherRepository persists vouchers, line items, events and the
// associate ledger. Every multi-row write set runs inside one database
// transaction; the voucher row's version column is checked-and-incremented
// in the same transaction so concurrent writers fail with a conflict instead
// of corrupting the ledger.
type PgxVoucherRepository struct {
	BaseRepository
}

// NewPgxVoucherRepository creates a new repository for voucher data.
func NewPgxVoucherRepository(pool *pgxpool.Pool) portsrepo.VoucherRepositoryWithTx {
	return &PgxVoucherRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.VoucherRepositoryWithTx = (*PgxVoucherRepository)(nil)

const voucherColumns = `voucher_id, tenant_id, voucher_no, voucher_date, voucher_type, note, currency_code, counterparty_id, issuer_id, status, superseded_by_id, deleted_at, version, created_at, created_by, last_updated_at, last_updated_by`

const lineItemColumns = `line_item_id, voucher_id, account_id, side, amount, memo, created_at, created_by, last_updated_at, last_updated_by`

const associateColumns = `associate_line_item_id, associate_voucher_id, original_line_item_id, result_line_item_id, side, amount, created_at, created_by, last_updated_at, last_updated_by`

// insertVoucherTx inserts a voucher header, its line items and its link rows
// within an existing transaction.
func (r *PgxVoucherRepository) insertVoucherTx(ctx context.Context, tx pgx.Tx, write portsrepo.VoucherWrite) error {
	m := mapping.ToModelVoucher(write.Voucher)
	voucherQuery := `
		INSERT INTO vouchers (` + voucherColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := tx.Exec(ctx, voucherQuery,
		m.VoucherID,
		m.TenantID,
		m.VoucherNo,
		m.VoucherDate,
		m.VoucherType,
		m.Note,
		m.CurrencyCode,
		m.CounterpartyID,
		m.IssuerID,
		m.Status,
		m.SupersededByID,
		m.DeletedAt,
		m.Version,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert voucher "+m.VoucherID, err)
	}

	batch := &pgx.Batch{}
	lineItemQuery := `
		INSERT INTO line_items (` + lineItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, li := range write.LineItems {
		mli := mapping.ToModelLineItem(li)
		batch.Queue(lineItemQuery,
			mli.LineItemID,
			mli.VoucherID,
			mli.AccountID,
			mli.Side,
			mli.Amount,
			mli.Memo,
			mli.CreatedAt,
			mli.CreatedBy,
			mli.LastUpdatedAt,
			mli.LastUpdatedBy,
		)
	}
	for _, certID := range write.Voucher.CertificateIDs {
		batch.Queue(`INSERT INTO voucher_certificates (voucher_id, certificate_id) VALUES ($1, $2);`, m.VoucherID, certID)
	}
	for _, assetID := range write.Voucher.AssetIDs {
		batch.Queue(`INSERT INTO voucher_assets (voucher_id, asset_id) VALUES ($1, $2);`, m.VoucherID, assetID)
	}

	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute line item batch for voucher "+m.VoucherID, err)
	}
	return nil
}

// transitionVoucherTx bumps the voucher version while applying a state
// change, failing with a conflict when the expected version is stale.
func (r *PgxVoucherRepository) transitionVoucherTx(ctx context.Context, tx pgx.Tx, write portsrepo.ReversalWrite) error {
	query := `
		UPDATE vouchers
		SET status = $3, deleted_at = $4, superseded_by_id = $5, version = version + 1,
		    last_updated_at = $6, last_updated_by = $7
		WHERE voucher_id = $1 AND version = $2;
	`
	tag, err := tx.Exec(ctx, query,
		write.OriginalVoucherID,
		write.ExpectedVersion,
		string(write.NewStatus),
		write.DeletedAt,
		write.SupersededByID,
		write.UpdatedAt,
		write.UpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to transition voucher "+write.OriginalVoucherID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: voucher %s version %d is stale", apperrors.ErrConflict, write.OriginalVoucherID, write.ExpectedVersion)
	}
	return nil
}

// insertEventTx inserts an event with its associate voucher and associate
// line items.
func (r *PgxVoucherRepository) insertEventTx(ctx context.Context, tx pgx.Tx, event domain.VoucherEvent, associateVoucher domain.AssociateVoucher, associates []domain.AssociateLineItem) error {
	me := mapping.ToModelEvent(event)
	_, err := tx.Exec(ctx, `
		INSERT INTO voucher_events (event_id, kind, original_voucher_id, result_voucher_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6);
	`, me.EventID, me.Kind, me.OriginalVoucherID, me.ResultVoucherID, me.CreatedAt, me.CreatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert event "+me.EventID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO associate_vouchers (associate_voucher_id, event_id, original_voucher_id, result_voucher_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`,
		associateVoucher.AssociateVoucherID,
		associateVoucher.EventID,
		associateVoucher.OriginalVoucherID,
		associateVoucher.ResultVoucherID,
		associateVoucher.CreatedAt,
		associateVoucher.CreatedBy,
		associateVoucher.LastUpdatedAt,
		associateVoucher.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert associate voucher "+associateVoucher.AssociateVoucherID, err)
	}

	batch := &pgx.Batch{}
	associateQuery := `
		INSERT INTO associate_line_items (` + associateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, assoc := range associates {
		ma := mapping.ToModelAssociateLineItem(assoc)
		batch.Queue(associateQuery,
			ma.AssociateLineItemID,
			ma.AssociateVoucherID,
			ma.OriginalLineItemID,
			ma.ResultLineItemID,
			ma.Side,
			ma.Amount,
			ma.CreatedAt,
			ma.CreatedBy,
			ma.LastUpdatedAt,
			ma.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to execute associate batch for event "+me.EventID, err)
	}
	return nil
}

// SaveVoucher persists a new voucher and its line items atomically.
func (r *PgxVoucherRepository) SaveVoucher(ctx context.Context, write portsrepo.VoucherWrite) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.insertVoucherTx(ctx, tx, write); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SaveReversal executes the full reversal write set in one transaction: the
// original's state transition (with version check), the reversal voucher and
// its legs, the event, the associate records and, for amendments, the
// replacement voucher. Any failure rolls the whole set back.
func (r *PgxVoucherRepository) SaveReversal(ctx context.Context, write portsrepo.ReversalWrite) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.transitionVoucherTx(ctx, tx, write); err != nil {
		return err
	}
	if err := r.insertVoucherTx(ctx, tx, write.Reversal); err != nil {
		return err
	}
	if err := r.insertEventTx(ctx, tx, write.Event, write.AssociateVoucher, write.AssociateLineItems); err != nil {
		return err
	}
	if write.Replacement != nil {
		if err := r.insertVoucherTx(ctx, tx, *write.Replacement); err != nil {
			return err
		}
	}
	return r.Commit(ctx, tx)
}

// SaveWriteOff executes the write-off write set in one transaction. The
// original voucher's version bump serializes concurrent write-offs against
// the same voucher.
func (r *PgxVoucherRepository) SaveWriteOff(ctx context.Context, write portsrepo.WriteOffWrite) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	tag, err := tx.Exec(ctx, `
		UPDATE vouchers
		SET version = version + 1, last_updated_at = $3, last_updated_by = $4
		WHERE voucher_id = $1 AND version = $2;
	`, write.OriginalVoucherID, write.ExpectedVersion, write.UpdatedAt, write.UpdatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to bump voucher version for write-off", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: voucher %s version %d is stale", apperrors.ErrConflict, write.OriginalVoucherID, write.ExpectedVersion)
	}

	if err := r.insertEventTx(ctx, tx, write.Event, write.AssociateVoucher, write.AssociateLineItems); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// UpdateVoucherLinks applies a non-structural link update in one
// transaction. The voucher row's version is checked-and-incremented even
// though line items are untouched, so a racing structural amendment cannot
// interleave.
func (r *PgxVoucherRepository) UpdateVoucherLinks(ctx context.Context, update portsrepo.VoucherLinksUpdate) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	query := `
		UPDATE vouchers
		SET note = COALESCE($3, note),
		    voucher_date = COALESCE($4, voucher_date),
		    counterparty_id = CASE WHEN $5 THEN NULL ELSE COALESCE($6, counterparty_id) END,
		    version = version + 1,
		    last_updated_at = $7,
		    last_updated_by = $8
		WHERE voucher_id = $1 AND version = $2;
	`
	tag, err := tx.Exec(ctx, query,
		update.VoucherID,
		update.ExpectedVersion,
		update.Note,
		update.VoucherDate,
		update.ClearCounterparty,
		update.CounterpartyID,
		update.UpdatedAt,
		update.UpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update voucher links for "+update.VoucherID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: voucher %s version %d is stale", apperrors.ErrConflict, update.VoucherID, update.ExpectedVersion)
	}

	batch := &pgx.Batch{}
	for _, id := range update.CertificateIDsToAdd {
		batch.Queue(`INSERT INTO voucher_certificates (voucher_id, certificate_id) VALUES ($1, $2) ON CONFLICT DO NOTHING;`, update.VoucherID, id)
	}
	for _, id := range update.CertificateIDsToRemove {
		batch.Queue(`DELETE FROM voucher_certificates WHERE voucher_id = $1 AND certificate_id = $2;`, update.VoucherID, id)
	}
	for _, id := range update.AssetIDsToAdd {
		batch.Queue(`INSERT INTO voucher_assets (voucher_id, asset_id) VALUES ($1, $2) ON CONFLICT DO NOTHING;`, update.VoucherID, id)
	}
	for _, id := range update.AssetIDsToRemove {
		batch.Queue(`DELETE FROM voucher_assets WHERE voucher_id = $1 AND asset_id = $2;`, update.VoucherID, id)
	}
	for _, id := range update.ReverseVoucherIDsToAdd {
		batch.Queue(`INSERT INTO voucher_reverse_links (voucher_id, reverse_voucher_id) VALUES ($1, $2) ON CONFLICT DO NOTHING;`, update.VoucherID, id)
	}
	for _, id := range update.ReverseVoucherIDsToRemove {
		batch.Queue(`DELETE FROM voucher_reverse_links WHERE voucher_id = $1 AND reverse_voucher_id = $2;`, update.VoucherID, id)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to execute link batch for voucher "+update.VoucherID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// FindVoucherByID retrieves a voucher header including its certificate,
// asset and reverse-voucher links.
func (r *PgxVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE voucher_id = $1;`
	var m models.Voucher
	err := r.Pool.QueryRow(ctx, query, voucherID).Scan(
		&m.VoucherID,
		&m.TenantID,
		&m.VoucherNo,
		&m.VoucherDate,
		&m.VoucherType,
		&m.Note,
		&m.CurrencyCode,
		&m.CounterpartyID,
		&m.IssuerID,
		&m.Status,
		&m.SupersededByID,
		&m.DeletedAt,
		&m.Version,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find voucher by ID "+voucherID, err)
	}

	voucher := mapping.ToDomainVoucher(m)

	voucher.CertificateIDs, err = r.collectIDs(ctx, `SELECT certificate_id FROM voucher_certificates WHERE voucher_id = $1;`, voucherID)
	if err != nil {
		return nil, err
	}
	voucher.AssetIDs, err = r.collectIDs(ctx, `SELECT asset_id FROM voucher_assets WHERE voucher_id = $1;`, voucherID)
	if err != nil {
		return nil, err
	}
	voucher.ReverseVoucherIDs, err = r.collectIDs(ctx, `SELECT reverse_voucher_id FROM voucher_reverse_links WHERE voucher_id = $1;`, voucherID)
	if err != nil {
		return nil, err
	}

	return &voucher, nil
}

func (r *PgxVoucherRepository) collectIDs(ctx context.Context, query string, voucherID string) ([]string, error) {
	rows, err := r.Pool.Query(ctx, query, voucherID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query voucher links for "+voucherID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan voucher link row", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating voucher link rows", err)
	}
	return ids, nil
}

// FindLineItemsByVoucherID retrieves all line items belonging to a voucher.
func (r *PgxVoucherRepository) FindLineItemsByVoucherID(ctx context.Context, voucherID string) ([]domain.LineItem, error) {
	query := `
		SELECT ` + lineItemColumns + `
		FROM line_items
		WHERE voucher_id = $1
		ORDER BY line_item_id;
	`
	rows, err := r.Pool.Query(ctx, query, voucherID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query line items for voucher "+voucherID, err)
	}
	defer rows.Close()

	lineItems := []models.LineItem{}
	for rows.Next() {
		var li models.LineItem
		err := rows.Scan(
			&li.LineItemID,
			&li.VoucherID,
			&li.AccountID,
			&li.Side,
			&li.Amount,
			&li.Memo,
			&li.CreatedAt,
			&li.CreatedBy,
			&li.LastUpdatedAt,
			&li.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line item row for voucher "+voucherID, err)
		}
		lineItems = append(lineItems, li)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line item rows for voucher "+voucherID, err)
	}
	return mapping.ToDomainLineItemSlice(lineItems), nil
}

// FindLineItemByID retrieves a single line item.
func (r *PgxVoucherRepository) FindLineItemByID(ctx context.Context, lineItemID string) (*domain.LineItem, error) {
	query := `SELECT ` + lineItemColumns + ` FROM line_items WHERE line_item_id = $1;`
	var li models.LineItem
	err := r.Pool.QueryRow(ctx, query, lineItemID).Scan(
		&li.LineItemID,
		&li.VoucherID,
		&li.AccountID,
		&li.Side,
		&li.Amount,
		&li.Memo,
		&li.CreatedAt,
		&li.CreatedBy,
		&li.LastUpdatedAt,
		&li.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find line item by ID "+lineItemID, err)
	}
	lineItem := mapping.ToDomainLineItem(li)
	return &lineItem, nil
}

// ListVouchersByTenant retrieves a paginated list of vouchers for a tenant
// using token-based pagination. Reversal vouchers (result side of a reversal
// event) are excluded unless includeReversals is set.
func (r *PgxVoucherRepository) ListVouchersByTenant(ctx context.Context, tenantID string, limit int, nextToken *string, includeReversals bool) ([]domain.Voucher, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + voucherColumns + `
		FROM vouchers v
		WHERE v.tenant_id = $1
	`
	if !includeReversals {
		baseQuery += `
		AND NOT EXISTS (
			SELECT 1 FROM voucher_events e
			WHERE e.result_voucher_id = v.voucher_id
			AND e.kind IN ('REVERSAL_FOR_DELETE', 'REVERSAL_FOR_EDIT')
		)
	`
	}
	orderByClause := `ORDER BY v.voucher_date DESC, v.created_at DESC`

	args := []interface{}{tenantID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastVoucherDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (v.voucher_date, v.created_at) < ($2, $3)`
		args = append(args, lastVoucherDate, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query vouchers for tenant "+tenantID, err)
	}
	defer rows.Close()

	vouchers := []models.Voucher{}
	for rows.Next() {
		var m models.Voucher
		err := rows.Scan(
			&m.VoucherID,
			&m.TenantID,
			&m.VoucherNo,
			&m.VoucherDate,
			&m.VoucherType,
			&m.Note,
			&m.CurrencyCode,
			&m.CounterpartyID,
			&m.IssuerID,
			&m.Status,
			&m.SupersededByID,
			&m.DeletedAt,
			&m.Version,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan voucher row for tenant "+tenantID, err)
		}
		vouchers = append(vouchers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating voucher rows for tenant "+tenantID, err)
	}

	var nextTokenVal *string
	var results []models.Voucher
	if len(vouchers) > limit {
		lastVoucher := vouchers[limit-1]
		token := pagination.EncodeToken(lastVoucher.VoucherDate, lastVoucher.CreatedAt)
		nextTokenVal = &token
		results = vouchers[:limit]
	} else {
		results = vouchers
	}

	domainVouchers := make([]domain.Voucher, len(results))
	for i, m := range results {
		domainVouchers[i] = mapping.ToDomainVoucher(m)
	}
	return domainVouchers, nextTokenVal, nil
}

// FindAssociatesByOriginalLineItem retrieves every associate record whose
// original side is the given line item.
func (r *PgxVoucherRepository) FindAssociatesByOriginalLineItem(ctx context.Context, lineItemID string) ([]domain.AssociateLineItem, error) {
	return r.findAssociates(ctx, `original_line_item_id`, lineItemID)
}

// FindAssociatesByResultLineItem retrieves every associate record whose
// result side is the given line item.
func (r *PgxVoucherRepository) FindAssociatesByResultLineItem(ctx context.Context, lineItemID string) ([]domain.AssociateLineItem, error) {
	return r.findAssociates(ctx, `result_line_item_id`, lineItemID)
}

func (r *PgxVoucherRepository) findAssociates(ctx context.Context, column string, lineItemID string) ([]domain.AssociateLineItem, error) {
	query := `
		SELECT ` + associateColumns + `
		FROM associate_line_items
		WHERE ` + column + ` = $1
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, lineItemID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query associates for line item "+lineItemID, err)
	}
	defer rows.Close()

	associates := []models.AssociateLineItem{}
	for rows.Next() {
		var a models.AssociateLineItem
		err := rows.Scan(
			&a.AssociateLineItemID,
			&a.AssociateVoucherID,
			&a.OriginalLineItemID,
			&a.ResultLineItemID,
			&a.Side,
			&a.Amount,
			&a.CreatedAt,
			&a.CreatedBy,
			&a.LastUpdatedAt,
			&a.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan associate row for line item "+lineItemID, err)
		}
		associates = append(associates, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating associate rows for line item "+lineItemID, err)
	}
	return mapping.ToDomainAssociateLineItemSlice(associates), nil
}

// FindEventByID retrieves a voucher event.
func (r *PgxVoucherRepository) FindEventByID(ctx context.Context, eventID string) (*domain.VoucherEvent, error) {
	query := `
		SELECT event_id, kind, original_voucher_id, result_voucher_id, created_at, created_by
		FROM voucher_events
		WHERE event_id = $1;
	`
	var m models.VoucherEvent
	err := r.Pool.QueryRow(ctx, query, eventID).Scan(
		&m.EventID,
		&m.Kind,
		&m.OriginalVoucherID,
		&m.ResultVoucherID,
		&m.CreatedAt,
		&m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find event by ID "+eventID, err)
	}
	event := mapping.ToDomainEvent(m)
	return &event, nil
}

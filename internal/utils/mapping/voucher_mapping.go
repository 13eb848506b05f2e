package mapping

import (
	"github.com/ledgerkeep/ledgerkeep/internal/core/domain"
	"github.com/ledgerkeep/ledgerkeep/internal/models"
)

// ToModelVoucher converts a domain Voucher to a model Voucher.
func ToModelVoucher(d domain.Voucher) models.Voucher {
	return models.Voucher{
		VoucherID:      d.VoucherID,
		TenantID:       d.TenantID,
		VoucherNo:      d.VoucherNo,
		VoucherDate:    d.VoucherDate,
		VoucherType:    d.VoucherType,
		Note:           d.Note,
		CurrencyCode:   d.CurrencyCode,
		CounterpartyID: d.CounterpartyID,
		IssuerID:       d.IssuerID,
		Status:         models.VoucherStatus(d.Status),
		SupersededByID: d.SupersededByID,
		DeletedAt:      d.DeletedAt,
		Version:        d.Version,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainVoucher converts a model Voucher to a domain Voucher.
func ToDomainVoucher(m models.Voucher) domain.Voucher {
	return domain.Voucher{
		VoucherID:      m.VoucherID,
		TenantID:       m.TenantID,
		VoucherNo:      m.VoucherNo,
		VoucherDate:    m.VoucherDate,
		VoucherType:    m.VoucherType,
		Note:           m.Note,
		CurrencyCode:   m.CurrencyCode,
		CounterpartyID: m.CounterpartyID,
		IssuerID:       m.IssuerID,
		Status:         domain.VoucherStatus(m.Status),
		SupersededByID: m.SupersededByID,
		DeletedAt:      m.DeletedAt,
		Version:        m.Version,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLineItem converts a domain LineItem to a model LineItem.
func ToModelLineItem(d domain.LineItem) models.LineItem {
	return models.LineItem{
		LineItemID:  d.LineItemID,
		VoucherID:   d.VoucherID,
		AccountID:   d.AccountID,
		Side:        string(d.Side),
		Amount:      d.Amount,
		Memo:        d.Memo,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLineItem converts a model LineItem to a domain LineItem.
func ToDomainLineItem(m models.LineItem) domain.LineItem {
	return domain.LineItem{
		LineItemID:  m.LineItemID,
		VoucherID:   m.VoucherID,
		AccountID:   m.AccountID,
		Side:        domain.EntrySide(m.Side),
		Amount:      m.Amount,
		Memo:        m.Memo,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLineItemSlice converts a slice of model LineItems to domain LineItems.
func ToDomainLineItemSlice(ms []models.LineItem) []domain.LineItem {
	ds := make([]domain.LineItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLineItem(m)
	}
	return ds
}

// ToModelEvent converts a domain VoucherEvent to a model VoucherEvent.
func ToModelEvent(d domain.VoucherEvent) models.VoucherEvent {
	return models.VoucherEvent{
		EventID:           d.EventID,
		Kind:              string(d.Kind),
		OriginalVoucherID: d.OriginalVoucherID,
		ResultVoucherID:   d.ResultVoucherID,
		CreatedAt:         d.CreatedAt,
		CreatedBy:         d.CreatedBy,
	}
}

// ToDomainEvent converts a model VoucherEvent to a domain VoucherEvent.
func ToDomainEvent(m models.VoucherEvent) domain.VoucherEvent {
	return domain.VoucherEvent{
		EventID:           m.EventID,
		Kind:              domain.EventKind(m.Kind),
		OriginalVoucherID: m.OriginalVoucherID,
		ResultVoucherID:   m.ResultVoucherID,
		CreatedAt:         m.CreatedAt,
		CreatedBy:         m.CreatedBy,
	}
}

// ToModelAssociateLineItem converts a domain AssociateLineItem to its model.
func ToModelAssociateLineItem(d domain.AssociateLineItem) models.AssociateLineItem {
	return models.AssociateLineItem{
		AssociateLineItemID: d.AssociateLineItemID,
		AssociateVoucherID:  d.AssociateVoucherID,
		OriginalLineItemID:  d.OriginalLineItemID,
		ResultLineItemID:    d.ResultLineItemID,
		Side:                string(d.Side),
		Amount:              d.Amount,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAssociateLineItem converts a model AssociateLineItem to its domain form.
func ToDomainAssociateLineItem(m models.AssociateLineItem) domain.AssociateLineItem {
	return domain.AssociateLineItem{
		AssociateLineItemID: m.AssociateLineItemID,
		AssociateVoucherID:  m.AssociateVoucherID,
		OriginalLineItemID:  m.OriginalLineItemID,
		ResultLineItemID:    m.ResultLineItemID,
		Side:                domain.EntrySide(m.Side),
		Amount:              m.Amount,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAssociateLineItemSlice converts model associates to domain associates.
func ToDomainAssociateLineItemSlice(ms []models.AssociateLineItem) []domain.AssociateLineItem {
	ds := make([]domain.AssociateLineItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAssociateLineItem(m)
	}
	return ds
}

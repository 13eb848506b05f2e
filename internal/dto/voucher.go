package dto

import (
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one debit or credit leg of a voucher being posted or amended.
type LineItemRequest struct {
	AccountID string           `json:"accountID" binding:"required"`
	Side      domain.EntrySide `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Amount    decimal.Decimal  `json:"amount" binding:"required,dgt0"`
	Memo      string           `json:"memo"`
}

// CreateVoucherRequest carries a new voucher posting.
type CreateVoucherRequest struct {
	VoucherNo      string            `json:"voucherNo"`
	Date           time.Time         `json:"date" binding:"required"`
	VoucherType    string            `json:"voucherType"`
	Note           string            `json:"note"`
	CurrencyCode   string            `json:"currencyCode" binding:"required,len=3"`
	CounterpartyID *string           `json:"counterpartyID,omitempty"`
	CertificateIDs []string          `json:"certificateIDs,omitempty"`
	AssetIDs       []string          `json:"assetIDs,omitempty"`
	LineItems      []LineItemRequest `json:"lineItems" binding:"required,dive"`
}

// AmendVoucherRequest carries a requested amendment. LineItems is the full
// desired set; whether the amendment is structural is decided by the service,
// not the caller. The link fields are desired full sets as well; the service
// computes the symmetric differences against the persisted state.
type AmendVoucherRequest struct {
	LineItems         []LineItemRequest `json:"lineItems" binding:"required,dive"`
	Date              *time.Time        `json:"date,omitempty"`
	Note              *string           `json:"note,omitempty"`
	CounterpartyID    *string           `json:"counterpartyID,omitempty"`
	ClearCounterparty bool              `json:"clearCounterparty,omitempty"`
	CertificateIDs    *[]string         `json:"certificateIDs,omitempty"`
	AssetIDs          *[]string         `json:"assetIDs,omitempty"`
	ReverseVoucherIDs *[]string         `json:"reverseVoucherIDs,omitempty"`
}

// WriteOffRequest records that a result leg offsets an open
// receivable/payable leg by the given amount.
type WriteOffRequest struct {
	OriginalLineItemID string          `json:"originalLineItemID" binding:"required"`
	ResultLineItemID   string          `json:"resultLineItemID" binding:"required"`
	Amount             decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// ListVouchersParams holds parameters for listing vouchers.
type ListVouchersParams struct {
	Limit            int     `form:"limit"`
	NextToken        *string `form:"nextToken"`
	IncludeReversals bool    `form:"includeReversals"`
	IncludeLineItems bool    `form:"includeLineItems"`
}

// LineItemResponse defines the data returned for a line item.
type LineItemResponse struct {
	LineItemID string          `json:"lineItemID"`
	AccountID  string          `json:"accountID"`
	Side       string          `json:"side"`
	Amount     decimal.Decimal `json:"amount"`
	Memo       string          `json:"memo,omitempty"`
}

// VoucherResponse defines the data returned for a voucher.
type VoucherResponse struct {
	VoucherID         string             `json:"voucherID"`
	VoucherNo         string             `json:"voucherNo"`
	Date              time.Time          `json:"date"`
	VoucherType       string             `json:"voucherType"`
	Note              string             `json:"note"`
	CurrencyCode      string             `json:"currencyCode"`
	CounterpartyID    *string            `json:"counterpartyID,omitempty"`
	IssuerID          string             `json:"issuerID"`
	Status            string             `json:"status"`
	SupersededByID    *string            `json:"supersededByID,omitempty"`
	DeletedAt         *time.Time         `json:"deletedAt,omitempty"`
	CertificateIDs    []string           `json:"certificateIDs,omitempty"`
	AssetIDs          []string           `json:"assetIDs,omitempty"`
	ReverseVoucherIDs []string           `json:"reverseVoucherIDs,omitempty"`
	LineItems         []LineItemResponse `json:"lineItems,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	CreatedBy         string             `json:"createdBy"`
}

// ListVouchersResponse is the paginated voucher listing.
type ListVouchersResponse struct {
	Vouchers  []VoucherResponse `json:"vouchers"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// EventResponse returns the identity of a created voucher event.
type EventResponse struct {
	EventID string `json:"eventID"`
}

// OutstandingResponse reports the write-off status of one line item.
type OutstandingResponse struct {
	LineItemID  string          `json:"lineItemID"`
	Eligible    bool            `json:"eligible"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Reversible  bool            `json:"reversible"`
}

// ToLineItemResponse converts a domain.LineItem to LineItemResponse DTO.
func ToLineItemResponse(li *domain.LineItem) LineItemResponse {
	return LineItemResponse{
		LineItemID: li.LineItemID,
		AccountID:  li.AccountID,
		Side:       string(li.Side),
		Amount:     li.Amount,
		Memo:       li.Memo,
	}
}

// ToLineItemResponses converts a slice of domain.LineItem to []LineItemResponse.
func ToLineItemResponses(lis []domain.LineItem) []LineItemResponse {
	responses := make([]LineItemResponse, len(lis))
	for i := range lis {
		responses[i] = ToLineItemResponse(&lis[i])
	}
	return responses
}

// ToVoucherResponse converts a domain.Voucher to VoucherResponse DTO.
func ToVoucherResponse(v *domain.Voucher) VoucherResponse {
	resp := VoucherResponse{
		VoucherID:         v.VoucherID,
		VoucherNo:         v.VoucherNo,
		Date:              v.VoucherDate,
		VoucherType:       v.VoucherType,
		Note:              v.Note,
		CurrencyCode:      v.CurrencyCode,
		CounterpartyID:    v.CounterpartyID,
		IssuerID:          v.IssuerID,
		Status:            string(v.Status),
		SupersededByID:    v.SupersededByID,
		DeletedAt:         v.DeletedAt,
		CertificateIDs:    v.CertificateIDs,
		AssetIDs:          v.AssetIDs,
		ReverseVoucherIDs: v.ReverseVoucherIDs,
		CreatedAt:         v.CreatedAt,
		CreatedBy:         v.CreatedBy,
	}
	if len(v.LineItems) > 0 {
		resp.LineItems = ToLineItemResponses(v.LineItems)
	}
	return resp
}

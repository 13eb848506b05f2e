package dto

import (
	"github.com/ledgerkeep/ledgerkeep/internal/core/domain"
)

// CreateAccountRequest carries a new chart-of-accounts entry.
type CreateAccountRequest struct {
	Code           string                       `json:"code" binding:"required"`
	Name           string                       `json:"name" binding:"required"`
	Classification domain.AccountClassification `json:"classification" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	CurrencyCode   string                       `json:"currencyCode" binding:"required,len=3"`
	Description    string                       `json:"description"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID      string `json:"accountID"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	Classification string `json:"classification"`
	NormalSide     string `json:"normalSide"`
	CurrencyCode   string `json:"currencyCode"`
	Description    string `json:"description,omitempty"`
	IsActive       bool   `json:"isActive"`
}

// ListAccountsResponse is the paginated account listing.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      a.AccountID,
		Code:           a.Code,
		Name:           a.Name,
		Classification: string(a.Classification),
		NormalSide:     string(a.NormalSide),
		CurrencyCode:   a.CurrencyCode,
		Description:    a.Description,
		IsActive:       a.IsActive,
	}
}

// ToAccountResponses converts a slice of domain.Account to []AccountResponse.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}

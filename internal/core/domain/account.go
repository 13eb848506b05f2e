package domain

// AccountClassification defines the fundamental accounting type of an account.
type AccountClassification string

const (
	Asset     AccountClassification = "ASSET"
	Liability AccountClassification = "LIABILITY"
	Equity    AccountClassification = "EQUITY"
	Revenue   AccountClassification = "REVENUE"
	Expense   AccountClassification = "EXPENSE"
)

// Account represents one entry of the chart of accounts. Accounts are
// read-only inputs to the ledger core; they are maintained by a separate
// chart-of-accounts flow and only resolved here.
type Account struct {
	AccountID      string                `json:"accountID"`      // Primary Key (e.g., UUID)
	TenantID       string                `json:"tenantID"`       // FK -> tenants.tenant_id (Not Null)
	Code           string                `json:"code"`           // Account code within the chart, e.g. "1170"
	Name           string                `json:"name"`           // User-defined name
	Classification AccountClassification `json:"classification"` // ASSET, LIABILITY, etc.
	NormalSide     EntrySide             `json:"normalSide"`     // Side on which the account normally carries its balance
	CurrencyCode   string                `json:"currencyCode"`   // FK -> currencies.code (Not Null)
	Description    string                `json:"description"`    // Nullable user description
	IsActive       bool                  `json:"isActive"`       // Inactive accounts cannot be posted to
	AuditFields
}

// NormalSideFor returns the conventional balance side for a classification.
func NormalSideFor(c AccountClassification) EntrySide {
	switch c {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

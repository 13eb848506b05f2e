package models

// AccountClassification mirrors domain.AccountClassification for persistence.
type AccountClassification string

// Account is the database representation of a chart-of-accounts entry.
type Account struct {
	AccountID      string                `db:"account_id"`
	TenantID       string                `db:"tenant_id"`
	Code           string                `db:"code"`
	Name           string                `db:"name"`
	Classification AccountClassification `db:"classification"`
	NormalSide     string                `db:"normal_side"`
	CurrencyCode   string                `db:"currency_code"`
	Description    string                `db:"description"`
	IsActive       bool                  `db:"is_active"`
	AuditFields
}

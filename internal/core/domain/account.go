package domain

// AccountCategory defines the fundamental accounting category of an account.
type AccountCategory string

const (
	Asset     AccountCategory = "ASSET"
	Liability AccountCategory = "LIABILITY"
	Equity    AccountCategory = "EQUITY"
	Revenue   AccountCategory = "REVENUE"
	Expense   AccountCategory = "EXPENSE"
)

// Categories lists every category in statement order.
var Categories = []AccountCategory{Asset, Liability, Equity, Revenue, Expense}

// Valid reports whether c is one of the known categories.
func (c AccountCategory) Valid() bool {
	switch c {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalSide returns the side on which the category naturally accumulates.
func (c AccountCategory) NormalSide() Side {
	if c == Asset || c == Expense {
		return Debit
	}
	return Credit
}

// IsNominal reports whether accounts of this category are zeroed at period close.
func (c AccountCategory) IsNominal() bool {
	return c == Revenue || c == Expense
}

// Account is a node in the tenant's chart of accounts.
// The ledger engine only reads accounts; they are maintained by account management.
type Account struct {
	AccountID       string          `json:"accountID"`       // Primary Key (e.g., UUID)
	Code            string          `json:"code"`            // Unique per tenant
	Name            string          `json:"name"`            // User-defined name
	Category        AccountCategory `json:"category"`        // ASSET, LIABILITY, etc.
	ParentAccountID *string         `json:"parentAccountID"` // Same category as the parent
	Postable        bool            `json:"postable"`        // Only postable accounts receive lines
	Locked          bool            `json:"locked"`          // Locked accounts reject new postings
	AuditFields
}

package domain

// Company is the single tenant record of an isolated ledger dataset.
type Company struct {
	CompanyID string `json:"companyID"`
	Name      string `json:"name"`
	// RetainedEarningsAccountID designates the equity account that receives net income
	// when a period is closed. When nil, the closer falls back to name/code matching.
	RetainedEarningsAccountID *string `json:"retainedEarningsAccountID,omitempty"`
	AuditFields
}

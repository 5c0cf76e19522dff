package core

// BaseCurrency is the currency all monetary amounts are normalized to
// before any aggregation.
const BaseCurrency = "PLN"

type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleFinance Role = "Finance"
	RoleHR      Role = "HR"
)

// UserContext carries the caller identity supplied out-of-band by the host
// (request headers in the web adapter). The core never mutates it.
type UserContext struct {
	CompanyID string `json:"company_id"`
	Role      Role   `json:"role"`
}

type EntryKind string

const (
	KindIncome  EntryKind = "income"
	KindExpense EntryKind = "expense"
)

// LedgerEntry is one income, expense or payroll record as read from the
// storage layer. Amount is in the recorded currency, not the base currency.
type LedgerEntry struct {
	ID        int64  `json:"id"`
	ProjectID *int64 `json:"project_id,omitempty"`
	CompanyID string `json:"company_id"`
	Kind      EntryKind
	Date      string `json:"date"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

type Project struct {
	ID        int64  `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
}

type Tender struct {
	ID        int64  `json:"id"`
	CompanyID string `json:"company_id"`
	ProjectID int64  `json:"project_id"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// TenderAnalysis is the structured output of the AI tender review.
type TenderAnalysis struct {
	Summary        string   `json:"summary" jsonschema_description:"A concise summary of the tender document in at most four sentences"`
	Risks          []string `json:"risks" jsonschema_description:"Commercial or legal risks identified in the document, one short sentence each"`
	Deadlines      []string `json:"deadlines" jsonschema_description:"Submission and delivery deadlines mentioned in the document, in YYYY-MM-DD format where stated"`
	Recommendation string   `json:"recommendation" jsonschema_description:"A short recommendation on whether and how to bid"`
}

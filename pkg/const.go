package pkg

const (
	HeaderTraceId       string = "X-Trace-Id"
	HeaderAuthorization string = "Authorization"
)

const (
	TraceId string = "trace_id"
	UserId  string = "user_id"
)

// AccountType is an open set; checking and savings are the two types
// provisioned at registration.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
)

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusFrozen AccountStatus = "frozen"
)

// TransactionStatus has a single terminal state: rejected operations never
// produce a transaction row, so there is no pending or failed status.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
)

type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPaid    BillStatus = "paid"
)

type LoanStatus string

const (
	LoanStatusActive LoanStatus = "active"
)

type CardStatus string

const (
	CardStatusActive  CardStatus = "active"
	CardStatusBlocked CardStatus = "blocked"
)

type CardType string

const (
	CardTypeDebit  CardType = "debit"
	CardTypeCredit CardType = "credit"
)

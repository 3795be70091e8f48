package transfer

import "github.com/tomiwa-ade/demicredit/internal/domain"

// Status tags a transfer outcome so the web layer can map it onto a
// transport status deterministically.
type Status string

const (
	StatusSuccessful Status = "successful"
	StatusBadRequest Status = "bad-request"
	StatusNotFound   Status = "not-found"
	StatusForbidden  Status = "forbidden"
	StatusConflict   Status = "conflict"
)

// Machine-checkable rejection codes carried alongside the status tag.
const (
	CodeInvalidAmount      = "INVALID_AMOUNT"
	CodeSelfTransfer       = "SELF_TRANSFER_NOT_ALLOWED"
	CodeReceiverNotFound   = "RECEIVER_NOT_FOUND"
	CodeTransferInProgress = "TRANSFER_IN_PROGRESS"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
)

// Outcome is the orchestrator's result. On success Entry holds the
// sender-side ledger row as the representative record of the transfer.
type Outcome struct {
	Status  Status
	Code    string
	Message string
	Entry   *domain.Transaction
}

func (o *Outcome) Committed() bool {
	return o.Status == StatusSuccessful
}

func reject(status Status, code, message string) *Outcome {
	return &Outcome{Status: status, Code: code, Message: message}
}

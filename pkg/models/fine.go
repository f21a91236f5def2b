package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Fine is keyed by its loan, at most one per borrow event. It only exists
// for loans that were returned late.
type Fine struct {
	bun.BaseModel `bun:"table:fines,alias:f"`

	LoanID           int        `bun:",pk,nullzero" json:"loan_id"`
	Loan             *Loan      `bun:"rel:belongs-to,join:loan_id=id" json:"loan,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Amount           int64      `json:"amount"`
	IsPaid           bool       `json:"is_paid"`
	PaidAt           *time.Time `json:"paid_at"`
	PaymentReference *string    `json:"payment_reference"`
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Loan is a single borrow event in the ledger. It is created with a null
// ReturnedAt, and ReturnedAt is set exactly once when the book comes back.
type Loan struct {
	bun.BaseModel `bun:"table:loans,alias:l"`

	ID         int        `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ReaderID   int        `bun:",nullzero" json:"reader_id"`
	Reader     *Reader    `bun:"rel:belongs-to,join:reader_id=id" json:"reader,omitempty"`
	BookID     int        `bun:",nullzero" json:"book_id"`
	Book       *Book      `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	BorrowedAt time.Time  `bun:",nullzero" json:"borrowed_at"`
	DueAt      time.Time  `bun:",nullzero" json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at"`
	Fine       *Fine      `bun:"rel:has-one,join:id=loan_id" json:"fine,omitempty"`
}

// Outstanding reports whether the book is still out.
func (l *Loan) Outstanding() bool {
	return l.ReturnedAt == nil
}

// Overdue reports whether the loan is outstanding and past due as of t.
func (l *Loan) Overdue(t time.Time) bool {
	return l.Outstanding() && l.DueAt.Before(t)
}

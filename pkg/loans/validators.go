package loans

import "time"

type CreateLoanPayload struct {
	ReaderID   int       `json:"reader_id" validate:"required,min=1"`
	BookID     int       `json:"book_id" validate:"required,min=1"`
	BorrowedAt time.Time `json:"borrowed_at" validate:"required"`
	DueAt      time.Time `json:"due_at" validate:"required,gtfield=BorrowedAt"`
}

type ReturnLoanPayload struct {
	ReturnedAt time.Time `json:"returned_at" validate:"required"`
}

type ListLoansQuery struct {
	Limit       int   `query:"limit" json:"limit,omitempty" default:"20" validate:"min=1,max=100"`
	Offset      int   `query:"offset" json:"offset,omitempty" validate:"min=0"`
	ReaderID    *int  `query:"reader_id" json:"reader_id,omitempty" validate:"omitempty,min=1"`
	BookID      *int  `query:"book_id" json:"book_id,omitempty" validate:"omitempty,min=1"`
	Outstanding *bool `query:"outstanding" json:"outstanding,omitempty"`
	Overdue     bool  `query:"overdue" json:"overdue,omitempty"`
}

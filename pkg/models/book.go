package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID          int       `bun:",pk,nullzero" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Title       string    `bun:",nullzero" json:"title"`
	AuthorID    *int      `json:"author_id"`
	Author      *Author   `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	CategoryID  *int      `json:"category_id"`
	Category    *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	PublishYear *int      `json:"publish_year"`

	// IsAvailable is derived from the loan ledger: false iff an outstanding
	// loan references this book. Only the loans service writes it.
	IsAvailable bool `json:"is_available"`

	Loans     []*Loan `bun:"rel:has-many,join:id=book_id" json:"loans,omitempty"`
	LoanCount int     `bun:",scanonly" json:"loan_count,omitempty"`
}

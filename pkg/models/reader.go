package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Reader struct {
	bun.BaseModel `bun:"table:readers,alias:r"`

	ID           int       `bun:",pk,nullzero" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Name         string    `bun:",nullzero" json:"name"`
	RegisteredOn time.Time `bun:",nullzero" json:"registered_on"`
	Loans        []*Loan   `bun:"rel:has-many,join:id=reader_id" json:"loans,omitempty"`
	LoanCount    int       `bun:",scanonly" json:"loan_count,omitempty"`
}

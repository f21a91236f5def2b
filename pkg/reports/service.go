package reports

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/toshokan/kashidashi/pkg/models"
	"github.com/uptrace/bun"
)

// BookLoanCount pairs a book with how many times it has been borrowed.
type BookLoanCount struct {
	BookID    int    `json:"book_id"`
	Title     string `json:"title"`
	LoanCount int    `json:"loan_count"`
}

// ReaderBorrowCount pairs a reader with their lifetime borrow count. Readers
// who never borrowed anything still appear with a zero count.
type ReaderBorrowCount struct {
	ReaderID  int    `json:"reader_id"`
	Name      string `json:"name"`
	LoanCount int    `json:"loan_count"`
}

// HistoryEntry is one row of a reader's borrow history.
type HistoryEntry struct {
	BookID     int        `json:"book_id"`
	Title      string     `json:"title"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// OverdueLoans returns every loan still out past its due date as of the given
// instant, most overdue first.
func (svc *Service) OverdueLoans(ctx context.Context, asOf time.Time) ([]*models.Loan, error) {
	loans := []*models.Loan{}

	err := svc.db.
		NewSelect().
		Model(&loans).
		Relation("Reader").
		Relation("Book").
		Where("l.returned_at IS NULL").
		Where("l.due_at < ?", asOf).
		Order("l.due_at ASC", "l.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return loans, nil
}

// TopBorrowedBooks returns the most borrowed books, ties broken by title so
// the ordering is stable between runs.
func (svc *Service) TopBorrowedBooks(ctx context.Context, limit int) ([]*BookLoanCount, error) {
	if limit <= 0 {
		limit = 5
	}

	rows := []*BookLoanCount{}

	err := svc.db.
		NewSelect().
		Model((*models.Loan)(nil)).
		ColumnExpr("l.book_id AS book_id").
		ColumnExpr("b.title AS title").
		ColumnExpr("COUNT(*) AS loan_count").
		Join("JOIN books AS b ON b.id = l.book_id").
		Group("l.book_id", "b.title").
		OrderExpr("loan_count DESC, b.title ASC").
		Limit(limit).
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return rows, nil
}

// HotBooks returns every book borrowed more than once.
func (svc *Service) HotBooks(ctx context.Context) ([]*BookLoanCount, error) {
	rows := []*BookLoanCount{}

	err := svc.db.
		NewSelect().
		Model((*models.Loan)(nil)).
		ColumnExpr("l.book_id AS book_id").
		ColumnExpr("b.title AS title").
		ColumnExpr("COUNT(*) AS loan_count").
		Join("JOIN books AS b ON b.id = l.book_id").
		Group("l.book_id", "b.title").
		Having("COUNT(*) > 1").
		OrderExpr("loan_count DESC, b.title ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return rows, nil
}

// ReaderHistory returns everything a reader has ever borrowed, newest first.
func (svc *Service) ReaderHistory(ctx context.Context, readerID int) ([]*HistoryEntry, error) {
	rows := []*HistoryEntry{}

	err := svc.db.
		NewSelect().
		Model((*models.Loan)(nil)).
		ColumnExpr("l.book_id AS book_id").
		ColumnExpr("b.title AS title").
		ColumnExpr("l.borrowed_at AS borrowed_at").
		ColumnExpr("l.due_at AS due_at").
		ColumnExpr("l.returned_at AS returned_at").
		Join("JOIN books AS b ON b.id = l.book_id").
		Where("l.reader_id = ?", readerID).
		Order("l.borrowed_at DESC", "l.id DESC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return rows, nil
}

// ReaderBorrowCounts returns every reader with their lifetime borrow count.
// A LEFT JOIN keeps readers with no loans in the result.
func (svc *Service) ReaderBorrowCounts(ctx context.Context) ([]*ReaderBorrowCount, error) {
	rows := []*ReaderBorrowCount{}

	err := svc.db.
		NewSelect().
		Model((*models.Reader)(nil)).
		ColumnExpr("r.id AS reader_id").
		ColumnExpr("r.name AS name").
		ColumnExpr("COUNT(l.id) AS loan_count").
		Join("LEFT JOIN loans AS l ON l.reader_id = r.id").
		Group("r.id", "r.name").
		OrderExpr("loan_count DESC, r.name ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return rows, nil
}

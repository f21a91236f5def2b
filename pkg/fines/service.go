package fines

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/toshokan/kashidashi/pkg/errcodes"
	"github.com/toshokan/kashidashi/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveFineOptions struct {
	LoanID *int
}

type ListFinesOptions struct {
	Limit    *int
	Offset   *int
	ReaderID *int
	Unpaid   *bool

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) RetrieveFine(ctx context.Context, opts RetrieveFineOptions) (*models.Fine, error) {
	fine := &models.Fine{}

	q := svc.db.
		NewSelect().
		Model(fine).
		Relation("Loan").
		Relation("Loan.Reader").
		Relation("Loan.Book")

	if opts.LoanID != nil {
		q = q.Where("f.loan_id = ?", *opts.LoanID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Fine")
		}
		return nil, errors.WithStack(err)
	}

	return fine, nil
}

func (svc *Service) ListFines(ctx context.Context, opts ListFinesOptions) ([]*models.Fine, error) {
	f, _, err := svc.listFinesWithTotal(ctx, opts)
	return f, errors.WithStack(err)
}

func (svc *Service) ListFinesWithTotal(ctx context.Context, opts ListFinesOptions) ([]*models.Fine, int, error) {
	opts.includeTotal = true
	return svc.listFinesWithTotal(ctx, opts)
}

func (svc *Service) listFinesWithTotal(ctx context.Context, opts ListFinesOptions) ([]*models.Fine, int, error) {
	fines := []*models.Fine{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&fines).
		Relation("Loan").
		Relation("Loan.Reader").
		Relation("Loan.Book").
		Order("f.created_at DESC", "f.loan_id DESC")

	if opts.ReaderID != nil {
		q = q.
			Join("JOIN loans AS l ON l.id = f.loan_id").
			Where("l.reader_id = ?", *opts.ReaderID)
	}
	if opts.Unpaid != nil {
		q = q.Where("f.is_paid = ?", !*opts.Unpaid)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return fines, total, nil
}

// MarkPaid settles an outstanding fine. The payment reference is generated
// here rather than accepted from the caller so settlements are traceable but
// not forgeable.
func (svc *Service) MarkPaid(ctx context.Context, loanID int) (*models.Fine, error) {
	fine := &models.Fine{}

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.
			NewSelect().
			Model(fine).
			Where("f.loan_id = ?", loanID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Fine")
			}
			return errors.WithStack(err)
		}

		if fine.IsPaid {
			return errcodes.Conflict("Fine has already been paid.")
		}

		now := time.Now()
		reference := uuid.NewString()
		fine.IsPaid = true
		fine.PaidAt = &now
		fine.PaymentReference = &reference
		fine.UpdatedAt = now

		_, err = tx.
			NewUpdate().
			Model(fine).
			Column("is_paid", "paid_at", "payment_reference", "updated_at").
			WherePK().
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return fine, nil
}

// OutstandingTotal sums the unpaid fines owed by a single reader.
func (svc *Service) OutstandingTotal(ctx context.Context, readerID int) (int64, error) {
	var total int64

	err := svc.db.
		NewSelect().
		Model((*models.Fine)(nil)).
		ColumnExpr("COALESCE(SUM(f.amount), 0)").
		Join("JOIN loans AS l ON l.id = f.loan_id").
		Where("l.reader_id = ?", readerID).
		Where("f.is_paid = ?", false).
		Scan(ctx, &total)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	return total, nil
}

package loans

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/toshokan/kashidashi/pkg/errcodes"
	"github.com/toshokan/kashidashi/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveLoanOptions struct {
	ID *int
}

type ListLoansOptions struct {
	ReaderID    *int
	BookID      *int
	Outstanding *bool
	OverdueAsOf *time.Time
	Limit       *int
	Offset      *int

	includeTotal bool
}

type Service struct {
	db            *bun.DB
	fineDailyRate int64
}

func NewService(db *bun.DB, fineDailyRate int64) *Service {
	return &Service{db: db, fineDailyRate: fineDailyRate}
}

// CreateLoan records a borrow event. The referenced book must exist and be
// available; its availability flag is flipped in the same transaction so no
// reader ever observes an available book with an outstanding loan.
func (svc *Service) CreateLoan(ctx context.Context, loan *models.Loan) error {
	if !loan.DueAt.After(loan.BorrowedAt) {
		return errcodes.ValidationError(`"due_at" must be after "borrowed_at"`)
	}

	now := time.Now()
	if loan.CreatedAt.IsZero() {
		loan.CreatedAt = now
	}
	loan.UpdatedAt = loan.CreatedAt

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.
			NewSelect().
			Model((*models.Reader)(nil)).
			Where("r.id = ?", loan.ReaderID).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if !exists {
			return errcodes.NotFound("Reader")
		}

		book := &models.Book{}
		err = tx.
			NewSelect().
			Model(book).
			Where("b.id = ?", loan.BookID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Book")
			}
			return errors.WithStack(err)
		}
		if !book.IsAvailable {
			return errcodes.Conflict("Book is already checked out.")
		}

		_, err = tx.
			NewInsert().
			Model(loan).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return svc.setBookAvailability(ctx, tx, loan.BookID, false)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// ReturnLoan closes out a borrow event: it stamps the return time, computes
// any fine for lateness, and makes the book available again, all in one
// transaction. Returning a loan twice is a conflict, never a second fine.
func (svc *Service) ReturnLoan(ctx context.Context, id int, returnedAt time.Time) (*models.Loan, error) {
	loan := &models.Loan{}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.
			NewSelect().
			Model(loan).
			Where("l.id = ?", id).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Loan")
			}
			return errors.WithStack(err)
		}
		if loan.ReturnedAt != nil {
			return errcodes.Conflict("Loan has already been returned.")
		}
		if returnedAt.Before(loan.BorrowedAt) {
			return errcodes.ValidationError(`"returned_at" must not be before "borrowed_at"`)
		}

		now := time.Now()
		loan.ReturnedAt = &returnedAt
		loan.UpdatedAt = now

		_, err = tx.
			NewUpdate().
			Model(loan).
			Column("returned_at", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		amount := CalculateFine(loan.DueAt, returnedAt, svc.fineDailyRate)
		if amount > 0 {
			// The already-returned check above makes a duplicate unreachable,
			// but the guard stays so a bug can't double-charge a reader.
			exists, err := tx.
				NewSelect().
				Model((*models.Fine)(nil)).
				Where("f.loan_id = ?", loan.ID).
				Exists(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if exists {
				return errcodes.Conflict("Fine for this loan already exists.")
			}

			fine := &models.Fine{
				LoanID:    loan.ID,
				Amount:    amount,
				CreatedAt: now,
				UpdatedAt: now,
			}
			_, err = tx.
				NewInsert().
				Model(fine).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			loan.Fine = fine
		}

		return svc.setBookAvailability(ctx, tx, loan.BookID, true)
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return loan, nil
}

// setBookAvailability is the reactive half of the ledger: every loan insert
// flips the book unavailable and every return flips it back, inside the same
// transaction as the ledger write.
func (svc *Service) setBookAvailability(ctx context.Context, tx bun.Tx, bookID int, available bool) error {
	res, err := tx.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("is_available = ?", available).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}

func (svc *Service) RetrieveLoan(ctx context.Context, opts RetrieveLoanOptions) (*models.Loan, error) {
	loan := &models.Loan{}

	q := svc.db.
		NewSelect().
		Model(loan).
		Column("l.*").
		Relation("Reader").
		Relation("Book").
		Relation("Fine")

	if opts.ID != nil {
		q = q.Where("l.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Loan")
		}
		return nil, errors.WithStack(err)
	}

	return loan, nil
}

func (svc *Service) ListLoans(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, error) {
	l, _, err := svc.listLoansWithTotal(ctx, opts)
	return l, errors.WithStack(err)
}

func (svc *Service) ListLoansWithTotal(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, int, error) {
	opts.includeTotal = true
	return svc.listLoansWithTotal(ctx, opts)
}

func (svc *Service) listLoansWithTotal(ctx context.Context, opts ListLoansOptions) ([]*models.Loan, int, error) {
	loans := []*models.Loan{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&loans).
		Column("l.*").
		Relation("Reader").
		Relation("Book").
		Relation("Fine").
		Order("l.borrowed_at DESC", "l.id DESC")

	if opts.ReaderID != nil {
		q = q.Where("l.reader_id = ?", *opts.ReaderID)
	}
	if opts.BookID != nil {
		q = q.Where("l.book_id = ?", *opts.BookID)
	}
	if opts.Outstanding != nil {
		if *opts.Outstanding {
			q = q.Where("l.returned_at IS NULL")
		} else {
			q = q.Where("l.returned_at IS NOT NULL")
		}
	}
	if opts.OverdueAsOf != nil {
		q = q.Where("l.returned_at IS NULL").Where("l.due_at < ?", *opts.OverdueAsOf)
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

	return loans, total, nil
}

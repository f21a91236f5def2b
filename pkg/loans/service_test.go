package loans

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toshokan/kashidashi/pkg/errcodes"
	"github.com/toshokan/kashidashi/pkg/migrations"
	"github.com/toshokan/kashidashi/pkg/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func createTestReader(t *testing.T, db *bun.DB, name string) *models.Reader {
	t.Helper()

	now := time.Now()
	reader := &models.Reader{
		Name:         name,
		RegisteredOn: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := db.NewInsert().Model(reader).Exec(context.Background())
	require.NoError(t, err)
	return reader
}

func createTestBook(t *testing.T, db *bun.DB, title string) *models.Book {
	t.Helper()

	now := time.Now()
	book := &models.Book{
		Title:       title,
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := db.NewInsert().Model(book).Exec(context.Background())
	require.NoError(t, err)
	return book
}

func fetchBook(t *testing.T, db *bun.DB, id int) *models.Book {
	t.Helper()

	book := &models.Book{}
	err := db.NewSelect().Model(book).Where("b.id = ?", id).Scan(context.Background())
	require.NoError(t, err)
	return book
}

func TestCreateLoan(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db, 10)

	t.Run("marks the book unavailable", func(t *testing.T) {
		reader := createTestReader(t, db, "Aiko Tanaka")
		book := createTestBook(t, db, "Kokoro")

		now := time.Now()
		loan := &models.Loan{
			ReaderID:   reader.ID,
			BookID:     book.ID,
			BorrowedAt: now,
			DueAt:      now.AddDate(0, 0, 14),
		}
		err := svc.CreateLoan(ctx, loan)
		require.NoError(t, err)
		assert.NotZero(t, loan.ID)
		assert.Nil(t, loan.ReturnedAt)

		assert.False(t, fetchBook(t, db, book.ID).IsAvailable)
	})

	t.Run("conflicts when the book is already out", func(t *testing.T) {
		reader := createTestReader(t, db, "Ben Okafor")
		other := createTestReader(t, db, "Chen Wei")
		book := createTestBook(t, db, "Botchan")

		now := time.Now()
		first := &models.Loan{
			ReaderID:   reader.ID,
			BookID:     book.ID,
			BorrowedAt: now,
			DueAt:      now.AddDate(0, 0, 14),
		}
		require.NoError(t, svc.CreateLoan(ctx, first))

		second := &models.Loan{
			ReaderID:   other.ID,
			BookID:     book.ID,
			BorrowedAt: now,
			DueAt:      now.AddDate(0, 0, 14),
		}
		err := svc.CreateLoan(ctx, second)
		require.Error(t, err)

		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "conflict", cerr.Code)
	})

	t.Run("not found for a missing reader", func(t *testing.T) {
		book := createTestBook(t, db, "Sanshiro")

		now := time.Now()
		loan := &models.Loan{
			ReaderID:   99999,
			BookID:     book.ID,
			BorrowedAt: now,
			DueAt:      now.AddDate(0, 0, 14),
		}
		err := svc.CreateLoan(ctx, loan)
		require.Error(t, err)

		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "not_found", cerr.Code)
	})

	t.Run("not found for a missing book", func(t *testing.T) {
		reader := createTestReader(t, db, "Dana Ionescu")

		now := time.Now()
		loan := &models.Loan{
			ReaderID:   reader.ID,
			BookID:     99999,
			BorrowedAt: now,
			DueAt:      now.AddDate(0, 0, 14),
		}
		err := svc.CreateLoan(ctx, loan)
		require.Error(t, err)

		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "not_found", cerr.Code)
	})

	t.Run("rejects a due date not after the borrow date", func(t *testing.T) {
		reader := createTestReader(t, db, "Emil Larsen")
		book := createTestBook(t, db, "I Am a Cat")

		now := time.Now()
		loan := &models.Loan{
			ReaderID:   reader.ID,
			BookID:     book.ID,
			BorrowedAt: now,
			DueAt:      now,
		}
		err := svc.CreateLoan(ctx, loan)
		require.Error(t, err)

		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "validation_error", cerr.Code)

		// The failed create must not have touched the book.
		assert.True(t, fetchBook(t, db, book.ID).IsAvailable)
	})
}

func TestReturnLoan(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db, 10)

	borrow := func(t *testing.T, borrowedAt, dueAt time.Time) (*models.Reader, *models.Book, *models.Loan) {
		t.Helper()
		reader := createTestReader(t, db, "Reader "+t.Name())
		book := createTestBook(t, db, "Book "+t.Name())
		loan := &models.Loan{
			ReaderID:   reader.ID,
			BookID:     book.ID,
			BorrowedAt: borrowedAt,
			DueAt:      dueAt,
		}
		require.NoError(t, svc.CreateLoan(ctx, loan))
		return reader, book, loan
	}

	t.Run("on time return creates no fine", func(t *testing.T) {
		borrowedAt := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
		dueAt := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
		_, book, loan := borrow(t, borrowedAt, dueAt)

		returned, err := svc.ReturnLoan(ctx, loan.ID, time.Date(2024, time.June, 10, 10, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.NotNil(t, returned.ReturnedAt)
		assert.Nil(t, returned.Fine)

		assert.True(t, fetchBook(t, db, book.ID).IsAvailable)

		count, err := db.NewSelect().Model((*models.Fine)(nil)).Where("f.loan_id = ?", loan.ID).Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("late return creates a fine", func(t *testing.T) {
		borrowedAt := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
		dueAt := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
		_, book, loan := borrow(t, borrowedAt, dueAt)

		returned, err := svc.ReturnLoan(ctx, loan.ID, time.Date(2024, time.June, 20, 10, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.NotNil(t, returned.Fine)
		assert.EqualValues(t, 50, returned.Fine.Amount)
		assert.False(t, returned.Fine.IsPaid)

		assert.True(t, fetchBook(t, db, book.ID).IsAvailable)
	})

	t.Run("year spanning lateness", func(t *testing.T) {
		borrowedAt := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
		dueAt := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
		_, _, loan := borrow(t, borrowedAt, dueAt)

		returned, err := svc.ReturnLoan(ctx, loan.ID, time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.NotNil(t, returned.Fine)
		assert.EqualValues(t, 3700, returned.Fine.Amount)
	})

	t.Run("double return conflicts and charges nothing more", func(t *testing.T) {
		borrowedAt := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
		dueAt := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
		_, _, loan := borrow(t, borrowedAt, dueAt)

		_, err := svc.ReturnLoan(ctx, loan.ID, time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		_, err = svc.ReturnLoan(ctx, loan.ID, time.Date(2024, time.June, 25, 0, 0, 0, 0, time.UTC))
		require.Error(t, err)

		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "conflict", cerr.Code)

		count, err := db.NewSelect().Model((*models.Fine)(nil)).Where("f.loan_id = ?", loan.ID).Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("rejects a return before the borrow date", func(t *testing.T) {
		borrowedAt := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
		dueAt := time.Date(2024, time.June, 24, 0, 0, 0, 0, time.UTC)
		_, book, loan := borrow(t, borrowedAt, dueAt)

		_, err := svc.ReturnLoan(ctx, loan.ID, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
		require.Error(t, err)

		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "validation_error", cerr.Code)

		// Loan stays open and the book stays out.
		assert.False(t, fetchBook(t, db, book.ID).IsAvailable)
	})

	t.Run("not found for a missing loan", func(t *testing.T) {
		_, err := svc.ReturnLoan(ctx, 99999, time.Now())
		require.Error(t, err)

		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "not_found", cerr.Code)
	})

	t.Run("book can be borrowed again after return", func(t *testing.T) {
		borrowedAt := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
		dueAt := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
		reader, book, loan := borrow(t, borrowedAt, dueAt)

		_, err := svc.ReturnLoan(ctx, loan.ID, dueAt)
		require.NoError(t, err)

		again := &models.Loan{
			ReaderID:   reader.ID,
			BookID:     book.ID,
			BorrowedAt: dueAt,
			DueAt:      dueAt.AddDate(0, 0, 14),
		}
		require.NoError(t, svc.CreateLoan(ctx, again))
		assert.False(t, fetchBook(t, db, book.ID).IsAvailable)
	})
}

func TestListLoans(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db, 10)

	reader := createTestReader(t, db, "Fumiko Hayashi")
	other := createTestReader(t, db, "Grace Park")
	book1 := createTestBook(t, db, "Drifting Clouds")
	book2 := createTestBook(t, db, "Late Chrysanthemum")

	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	loan1 := &models.Loan{ReaderID: reader.ID, BookID: book1.ID, BorrowedAt: base, DueAt: base.AddDate(0, 0, 14)}
	require.NoError(t, svc.CreateLoan(ctx, loan1))

	loan2 := &models.Loan{ReaderID: other.ID, BookID: book2.ID, BorrowedAt: base.AddDate(0, 0, 2), DueAt: base.AddDate(0, 0, 16)}
	require.NoError(t, svc.CreateLoan(ctx, loan2))

	_, err := svc.ReturnLoan(ctx, loan2.ID, base.AddDate(0, 0, 10))
	require.NoError(t, err)

	t.Run("filters by reader", func(t *testing.T) {
		loans, err := svc.ListLoans(ctx, ListLoansOptions{ReaderID: &reader.ID})
		require.NoError(t, err)
		require.Len(t, loans, 1)
		assert.Equal(t, loan1.ID, loans[0].ID)
	})

	t.Run("filters outstanding", func(t *testing.T) {
		outstanding := true
		loans, err := svc.ListLoans(ctx, ListLoansOptions{Outstanding: &outstanding})
		require.NoError(t, err)
		require.Len(t, loans, 1)
		assert.Equal(t, loan1.ID, loans[0].ID)
		assert.Nil(t, loans[0].ReturnedAt)
	})

	t.Run("filters overdue as of an instant", func(t *testing.T) {
		asOf := base.AddDate(0, 0, 20)
		loans, err := svc.ListLoans(ctx, ListLoansOptions{OverdueAsOf: &asOf})
		require.NoError(t, err)
		require.Len(t, loans, 1)
		assert.Equal(t, loan1.ID, loans[0].ID)

		early := base.AddDate(0, 0, 5)
		loans, err = svc.ListLoans(ctx, ListLoansOptions{OverdueAsOf: &early})
		require.NoError(t, err)
		assert.Empty(t, loans)
	})

	t.Run("includes relations and totals", func(t *testing.T) {
		loans, total, err := svc.ListLoansWithTotal(ctx, ListLoansOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, loans, 2)
		require.NotNil(t, loans[0].Reader)
		require.NotNil(t, loans[0].Book)
	})
}

package fines

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toshokan/kashidashi/pkg/errcodes"
	"github.com/toshokan/kashidashi/pkg/loans"
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

// createLateLoan books out and returns a loan five days late, yielding a
// fine of 50 at the default rate.
func createLateLoan(t *testing.T, db *bun.DB, readerName, bookTitle string) *models.Loan {
	t.Helper()
	ctx := context.Background()

	now := time.Now()
	reader := &models.Reader{Name: readerName, RegisteredOn: now, CreatedAt: now, UpdatedAt: now}
	_, err := db.NewInsert().Model(reader).Exec(ctx)
	require.NoError(t, err)

	book := &models.Book{Title: bookTitle, IsAvailable: true, CreatedAt: now, UpdatedAt: now}
	_, err = db.NewInsert().Model(book).Exec(ctx)
	require.NoError(t, err)

	loanService := loans.NewService(db, 10)
	loan := &models.Loan{
		ReaderID:   reader.ID,
		BookID:     book.ID,
		BorrowedAt: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		DueAt:      time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, loanService.CreateLoan(ctx, loan))

	returned, err := loanService.ReturnLoan(ctx, loan.ID, time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, returned.Fine)
	return returned
}

func TestRetrieveFine(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	loan := createLateLoan(t, db, "Aiko Tanaka", "Kokoro")

	t.Run("found with relations", func(t *testing.T) {
		fine, err := svc.RetrieveFine(ctx, RetrieveFineOptions{LoanID: &loan.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 50, fine.Amount)
		assert.False(t, fine.IsPaid)
		require.NotNil(t, fine.Loan)
		require.NotNil(t, fine.Loan.Reader)
		assert.Equal(t, "Aiko Tanaka", fine.Loan.Reader.Name)
	})

	t.Run("not found", func(t *testing.T) {
		id := 99999
		_, err := svc.RetrieveFine(ctx, RetrieveFineOptions{LoanID: &id})
		require.Error(t, err)

		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "not_found", cerr.Code)
	})
}

func TestListFines(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	loan1 := createLateLoan(t, db, "Ben Okafor", "Botchan")
	loan2 := createLateLoan(t, db, "Chen Wei", "Snow Country")

	_, err := svc.MarkPaid(ctx, loan2.ID)
	require.NoError(t, err)

	t.Run("lists everything with a total", func(t *testing.T) {
		fines, total, err := svc.ListFinesWithTotal(ctx, ListFinesOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, fines, 2)
	})

	t.Run("filters unpaid", func(t *testing.T) {
		unpaid := true
		fines, err := svc.ListFines(ctx, ListFinesOptions{Unpaid: &unpaid})
		require.NoError(t, err)
		require.Len(t, fines, 1)
		assert.Equal(t, loan1.ID, fines[0].LoanID)
	})

	t.Run("filters by reader", func(t *testing.T) {
		fines, err := svc.ListFines(ctx, ListFinesOptions{ReaderID: &loan1.ReaderID})
		require.NoError(t, err)
		require.Len(t, fines, 1)
		assert.Equal(t, loan1.ID, fines[0].LoanID)
	})
}

func TestMarkPaid(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	loan := createLateLoan(t, db, "Dana Ionescu", "Thousand Cranes")

	t.Run("stamps payment details", func(t *testing.T) {
		fine, err := svc.MarkPaid(ctx, loan.ID)
		require.NoError(t, err)
		assert.True(t, fine.IsPaid)
		require.NotNil(t, fine.PaidAt)
		require.NotNil(t, fine.PaymentReference)

		_, err = uuid.Parse(*fine.PaymentReference)
		assert.NoError(t, err)
	})

	t.Run("paying twice conflicts", func(t *testing.T) {
		_, err := svc.MarkPaid(ctx, loan.ID)
		require.Error(t, err)

		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "conflict", cerr.Code)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.MarkPaid(ctx, 99999)
		require.Error(t, err)

		cerr := &errcodes.Error{}
		require.ErrorAs(t, err, &cerr)
		assert.Equal(t, "not_found", cerr.Code)
	})
}

func TestOutstandingTotal(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(db)

	loan := createLateLoan(t, db, "Emil Larsen", "The Dispossessed")

	total, err := svc.OutstandingTotal(ctx, loan.ReaderID)
	require.NoError(t, err)
	assert.EqualValues(t, 50, total)

	_, err = svc.MarkPaid(ctx, loan.ID)
	require.NoError(t, err)

	total, err = svc.OutstandingTotal(ctx, loan.ReaderID)
	require.NoError(t, err)
	assert.Zero(t, total)
}

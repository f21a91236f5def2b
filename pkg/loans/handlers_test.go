package loans

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toshokan/kashidashi/pkg/binder"
	"github.com/toshokan/kashidashi/pkg/config"
	"github.com/toshokan/kashidashi/pkg/errcodes"
	"github.com/toshokan/kashidashi/pkg/models"
	"github.com/uptrace/bun"
)

func setupTestServer(t *testing.T, db *bun.DB) *echo.Echo {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	cfg := &config.Config{FineDailyRate: 10}
	RegisterRoutes(e, db, cfg)

	return e
}

func serveRequest(t *testing.T, e *echo.Echo, method, path, payload string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	if payload != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	return rr
}

func TestHandlerCreate(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)

	reader := createTestReader(t, db, "Aiko Tanaka")
	book := createTestBook(t, db, "Kokoro")

	t.Run("creates a loan", func(t *testing.T) {
		payload := fmt.Sprintf(
			`{"reader_id": %d, "book_id": %d, "borrowed_at": "2024-06-01T00:00:00Z", "due_at": "2024-06-15T00:00:00Z"}`,
			reader.ID, book.ID,
		)
		rr := serveRequest(t, e, http.MethodPost, "/loans", payload)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var resp struct {
			ID         int     `json:"id"`
			ReturnedAt *string `json:"returned_at"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotZero(t, resp.ID)
		assert.Nil(t, resp.ReturnedAt)
	})

	t.Run("conflicts when the book is already out", func(t *testing.T) {
		payload := fmt.Sprintf(
			`{"reader_id": %d, "book_id": %d, "borrowed_at": "2024-06-02T00:00:00Z", "due_at": "2024-06-16T00:00:00Z"}`,
			reader.ID, book.ID,
		)
		rr := serveRequest(t, e, http.MethodPost, "/loans", payload)
		assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
	})

	t.Run("rejects a due date before the borrow date", func(t *testing.T) {
		other := createTestBook(t, db, "Botchan")
		payload := fmt.Sprintf(
			`{"reader_id": %d, "book_id": %d, "borrowed_at": "2024-06-15T00:00:00Z", "due_at": "2024-06-01T00:00:00Z"}`,
			reader.ID, other.ID,
		)
		rr := serveRequest(t, e, http.MethodPost, "/loans", payload)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	})

	t.Run("rejects an unknown parameter", func(t *testing.T) {
		payload := `{"reader_id": 1, "book_id": 1, "borrowed_at": "2024-06-01T00:00:00Z", "due_at": "2024-06-15T00:00:00Z", "surprise": true}`
		rr := serveRequest(t, e, http.MethodPost, "/loans", payload)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	})
}

func TestHandlerReturnLoan(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)
	svc := NewService(db, 10)

	reader := createTestReader(t, db, "Ben Okafor")
	book := createTestBook(t, db, "The Dispossessed")

	loan := createLoan(t, svc, reader.ID, book.ID,
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
	)

	t.Run("returns late and reports the fine", func(t *testing.T) {
		payload := `{"returned_at": "2024-06-20T00:00:00Z"}`
		rr := serveRequest(t, e, http.MethodPost, fmt.Sprintf("/loans/%d/return", loan.ID), payload)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var resp struct {
			Loan struct {
				ReturnedAt *string `json:"returned_at"`
			} `json:"loan"`
			FineAmount int64 `json:"fine_amount"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotNil(t, resp.Loan.ReturnedAt)
		assert.EqualValues(t, 50, resp.FineAmount)
	})

	t.Run("second return conflicts", func(t *testing.T) {
		payload := `{"returned_at": "2024-06-21T00:00:00Z"}`
		rr := serveRequest(t, e, http.MethodPost, fmt.Sprintf("/loans/%d/return", loan.ID), payload)
		assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
	})

	t.Run("missing loan is a 404", func(t *testing.T) {
		payload := `{"returned_at": "2024-06-21T00:00:00Z"}`
		rr := serveRequest(t, e, http.MethodPost, "/loans/99999/return", payload)
		assert.Equal(t, http.StatusNotFound, rr.Code, rr.Body.String())
	})
}

func TestHandlerList(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	e := setupTestServer(t, db)
	svc := NewService(db, 10)

	reader := createTestReader(t, db, "Chen Wei")
	book1 := createTestBook(t, db, "Snow Country")
	book2 := createTestBook(t, db, "Thousand Cranes")

	createLoan(t, svc, reader.ID, book1.ID,
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
	)
	returned := createLoan(t, svc, reader.ID, book2.ID,
		time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC),
	)
	_, err := svc.ReturnLoan(context.Background(), returned.ID, time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	t.Run("lists everything with a total", func(t *testing.T) {
		rr := serveRequest(t, e, http.MethodGet, "/loans", "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var resp struct {
			Loans []json.RawMessage `json:"loans"`
			Total int               `json:"total"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Total)
		assert.Len(t, resp.Loans, 2)
	})

	t.Run("filters outstanding", func(t *testing.T) {
		rr := serveRequest(t, e, http.MethodGet, "/loans?outstanding=true", "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var resp struct {
			Loans []json.RawMessage `json:"loans"`
			Total int               `json:"total"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
	})

	t.Run("rejects a limit over the cap", func(t *testing.T) {
		rr := serveRequest(t, e, http.MethodGet, "/loans?limit=500", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	})
}

func createLoan(t *testing.T, svc *Service, readerID, bookID int, borrowedAt, dueAt time.Time) *models.Loan {
	t.Helper()

	loan := &models.Loan{
		ReaderID:   readerID,
		BookID:     bookID,
		BorrowedAt: borrowedAt,
		DueAt:      dueAt,
	}
	require.NoError(t, svc.CreateLoan(context.Background(), loan))
	return loan
}

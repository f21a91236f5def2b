package reports

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/toshokan/kashidashi/pkg/errcodes"
	"github.com/toshokan/kashidashi/pkg/models"
	"github.com/toshokan/kashidashi/pkg/readers"
)

type handler struct {
	reportService *Service
	readerService *readers.Service
}

func (h *handler) overdue(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := OverdueQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	asOf := time.Now()
	if params.AsOf != nil && *params.AsOf != "" {
		parsed, err := time.Parse("2006-01-02", *params.AsOf)
		if err != nil {
			return errcodes.ValidationError(`"as_of" should be in the format of YYYY-MM-DD`)
		}
		asOf = parsed
	}

	loans, err := h.reportService.OverdueLoans(ctx, asOf)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Loans []*models.Loan `json:"loans"`
		AsOf  time.Time      `json:"as_of"`
	}{loans, asOf}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) topBooks(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := TopBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, err := h.reportService.TopBorrowedBooks(ctx, params.Limit)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*BookLoanCount `json:"books"`
	}{books}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) hotBooks(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.reportService.HotBooks(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*BookLoanCount `json:"books"`
	}{books}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) readerHistory(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Reader")
	}

	// Missing readers 404 instead of returning an empty history.
	reader, err := h.readerService.RetrieveReader(ctx, readers.RetrieveReaderOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	history, err := h.reportService.ReaderHistory(ctx, reader.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Reader  *models.Reader  `json:"reader"`
		History []*HistoryEntry `json:"history"`
	}{reader, history}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) readerBorrowCounts(c echo.Context) error {
	ctx := c.Request().Context()

	counts, err := h.reportService.ReaderBorrowCounts(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Readers []*ReaderBorrowCount `json:"readers"`
	}{counts}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

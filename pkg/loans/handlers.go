package loans

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/toshokan/kashidashi/pkg/errcodes"
	"github.com/toshokan/kashidashi/pkg/models"
)

type handler struct {
	loanService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateLoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loan := &models.Loan{
		ReaderID:   params.ReaderID,
		BookID:     params.BookID,
		BorrowedAt: params.BorrowedAt,
		DueAt:      params.DueAt,
	}

	err := h.loanService.CreateLoan(ctx, loan)
	if err != nil {
		return errors.WithStack(err)
	}

	// Reload the model with its relations.
	loan, err = h.loanService.RetrieveLoan(ctx, RetrieveLoanOptions{
		ID: &loan.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, loan))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	loan, err := h.loanService.RetrieveLoan(ctx, RetrieveLoanOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, loan))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListLoansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListLoansOptions{
		Limit:       &params.Limit,
		Offset:      &params.Offset,
		ReaderID:    params.ReaderID,
		BookID:      params.BookID,
		Outstanding: params.Outstanding,
	}
	if params.Overdue {
		now := time.Now()
		opts.OverdueAsOf = &now
	}

	loans, total, err := h.loanService.ListLoansWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Loans []*models.Loan `json:"loans"`
		Total int            `json:"total"`
	}{loans, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) returnLoan(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Loan")
	}

	// Bind params.
	params := ReturnLoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loan, err := h.loanService.ReturnLoan(ctx, id, params.ReturnedAt)
	if err != nil {
		return errors.WithStack(err)
	}

	var fineAmount int64
	if loan.Fine != nil {
		fineAmount = loan.Fine.Amount
	}

	// Reload the model with its relations.
	loan, err = h.loanService.RetrieveLoan(ctx, RetrieveLoanOptions{
		ID: &loan.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Loan       *models.Loan `json:"loan"`
		FineAmount int64        `json:"fine_amount"`
	}{loan, fineAmount}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

package fines

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/toshokan/kashidashi/pkg/errcodes"
	"github.com/toshokan/kashidashi/pkg/models"
)

type handler struct {
	fineService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	loanID, err := strconv.Atoi(c.Param("loan_id"))
	if err != nil {
		return errcodes.NotFound("Fine")
	}

	fine, err := h.fineService.RetrieveFine(ctx, RetrieveFineOptions{
		LoanID: &loanID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, fine))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListFinesQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	fines, total, err := h.fineService.ListFinesWithTotal(ctx, ListFinesOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		ReaderID: params.ReaderID,
		Unpaid:   params.Unpaid,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Fines []*models.Fine `json:"fines"`
		Total int            `json:"total"`
	}{fines, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) markPaid(c echo.Context) error {
	ctx := c.Request().Context()
	loanID, err := strconv.Atoi(c.Param("loan_id"))
	if err != nil {
		return errcodes.NotFound("Fine")
	}

	fine, err := h.fineService.MarkPaid(ctx, loanID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, fine))
}

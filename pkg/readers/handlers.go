package readers

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
	readerService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateReaderPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	reader := &models.Reader{
		Name: params.Name,
	}
	if params.RegisteredOn != nil && *params.RegisteredOn != "" {
		registeredOn, err := time.Parse("2006-01-02", *params.RegisteredOn)
		if err != nil {
			return errcodes.ValidationError(`"registered_on" should be in the format of YYYY-MM-DD`)
		}
		reader.RegisteredOn = registeredOn
	}

	err := h.readerService.CreateReader(ctx, reader)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, reader))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Reader")
	}

	reader, err := h.readerService.RetrieveReader(ctx, RetrieveReaderOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, reader))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListReadersQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	readers, total, err := h.readerService.ListReadersWithTotal(ctx, ListReadersOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
		Search: params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Readers []*models.Reader `json:"readers"`
		Total   int              `json:"total"`
	}{readers, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Reader")
	}

	// Bind params.
	params := UpdateReaderPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Fetch the reader.
	reader, err := h.readerService.RetrieveReader(ctx, RetrieveReaderOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed.
	opts := UpdateReaderOptions{Columns: []string{}}

	if params.Name != nil && *params.Name != reader.Name {
		reader.Name = *params.Name
		opts.Columns = append(opts.Columns, "name")
	}
	if params.RegisteredOn != nil && *params.RegisteredOn != "" {
		registeredOn, err := time.Parse("2006-01-02", *params.RegisteredOn)
		if err != nil {
			return errcodes.ValidationError(`"registered_on" should be in the format of YYYY-MM-DD`)
		}
		reader.RegisteredOn = registeredOn
		opts.Columns = append(opts.Columns, "registered_on")
	}

	// Update the model.
	err = h.readerService.UpdateReader(ctx, reader, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, reader))
}

func (h *handler) deleteReader(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Reader")
	}

	err = h.readerService.DeleteReader(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

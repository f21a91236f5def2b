package books

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/toshokan/kashidashi/pkg/errcodes"
	"github.com/toshokan/kashidashi/pkg/models"
)

type handler struct {
	bookService *Service
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book := &models.Book{
		Title:       params.Title,
		AuthorID:    params.AuthorID,
		CategoryID:  params.CategoryID,
		PublishYear: params.PublishYear,
	}

	err := h.bookService.CreateBook(ctx, book)
	if err != nil {
		return errors.WithStack(err)
	}

	// Reload the model with its relations.
	book, err = h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &book.ID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	// Bind params.
	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	books, total, err := h.bookService.ListBooksWithTotal(ctx, ListBooksOptions{
		Limit:      &params.Limit,
		Offset:     &params.Offset,
		AuthorID:   params.AuthorID,
		CategoryID: params.CategoryID,
		Available:  params.Available,
		Search:     params.Search,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*models.Book `json:"books"`
		Total int            `json:"total"`
	}{books, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	// Bind params.
	params := UpdateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Fetch the book.
	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	// Keep track of what's been changed. A zero author_id or category_id
	// clears the reference.
	opts := UpdateBookOptions{Columns: []string{}}

	if params.Title != nil && *params.Title != book.Title {
		book.Title = *params.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if params.AuthorID != nil {
		if *params.AuthorID == 0 {
			book.AuthorID = nil
		} else {
			book.AuthorID = params.AuthorID
		}
		opts.Columns = append(opts.Columns, "author_id")
	}
	if params.CategoryID != nil {
		if *params.CategoryID == 0 {
			book.CategoryID = nil
		} else {
			book.CategoryID = params.CategoryID
		}
		opts.Columns = append(opts.Columns, "category_id")
	}
	if params.PublishYear != nil {
		book.PublishYear = params.PublishYear
		opts.Columns = append(opts.Columns, "publish_year")
	}

	// Update the model.
	err = h.bookService.UpdateBook(ctx, book, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	// Reload the model.
	book, err = h.bookService.RetrieveBook(ctx, RetrieveBookOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, book))
}

func (h *handler) deleteBook(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	err = h.bookService.DeleteBook(ctx, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

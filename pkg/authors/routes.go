package authors

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	authorService := NewService(db)

	h := &handler{
		authorService: authorService,
	}

	e.POST("/authors", h.create)
	e.GET("/authors/:id", h.retrieve)
	e.GET("/authors", h.list)
	e.POST("/authors/:id", h.update)
	e.DELETE("/authors/:id", h.deleteAuthor)
}

package readers

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	readerService := NewService(db)

	h := &handler{
		readerService: readerService,
	}

	e.POST("/readers", h.create)
	e.GET("/readers/:id", h.retrieve)
	e.GET("/readers", h.list)
	e.POST("/readers/:id", h.update)
	e.DELETE("/readers/:id", h.deleteReader)
}

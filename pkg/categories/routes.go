package categories

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	categoryService := NewService(db)

	h := &handler{
		categoryService: categoryService,
	}

	e.POST("/categories", h.create)
	e.GET("/categories/:id", h.retrieve)
	e.GET("/categories", h.list)
	e.POST("/categories/:id", h.update)
	e.DELETE("/categories/:id", h.deleteCategory)
}

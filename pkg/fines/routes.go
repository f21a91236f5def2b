package fines

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	fineService := NewService(db)

	h := &handler{
		fineService: fineService,
	}

	e.GET("/fines", h.list)
	e.GET("/fines/:loan_id", h.retrieve)
	e.POST("/fines/:loan_id/pay", h.markPaid)
}

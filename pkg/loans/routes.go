package loans

import (
	"github.com/labstack/echo/v4"
	"github.com/toshokan/kashidashi/pkg/config"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config) {
	loanService := NewService(db, cfg.FineDailyRate)

	h := &handler{
		loanService: loanService,
	}

	e.POST("/loans", h.create)
	e.GET("/loans/:id", h.retrieve)
	e.GET("/loans", h.list)
	e.POST("/loans/:id/return", h.returnLoan)
}

package reports

import (
	"github.com/labstack/echo/v4"
	"github.com/toshokan/kashidashi/pkg/readers"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	reportService := NewService(db)
	readerService := readers.NewService(db)

	h := &handler{
		reportService: reportService,
		readerService: readerService,
	}

	e.GET("/reports/overdue", h.overdue)
	e.GET("/reports/top-books", h.topBooks)
	e.GET("/reports/hot-books", h.hotBooks)
	e.GET("/reports/readers/:id/history", h.readerHistory)
	e.GET("/reports/reader-borrow-counts", h.readerBorrowCounts)
}

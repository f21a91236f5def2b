package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/toshokan/kashidashi/pkg/authors"
	"github.com/toshokan/kashidashi/pkg/binder"
	"github.com/toshokan/kashidashi/pkg/books"
	"github.com/toshokan/kashidashi/pkg/categories"
	"github.com/toshokan/kashidashi/pkg/config"
	"github.com/toshokan/kashidashi/pkg/errcodes"
	"github.com/toshokan/kashidashi/pkg/fines"
	"github.com/toshokan/kashidashi/pkg/loans"
	"github.com/toshokan/kashidashi/pkg/readers"
	"github.com/toshokan/kashidashi/pkg/reports"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	readers.RegisterRoutes(e, db)
	authors.RegisterRoutes(e, db)
	categories.RegisterRoutes(e, db)
	books.RegisterRoutes(e, db)
	loans.RegisterRoutes(e, db, cfg)
	fines.RegisterRoutes(e, db)
	reports.RegisterRoutes(e, db)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}

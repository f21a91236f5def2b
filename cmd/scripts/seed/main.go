package main

import (
	"context"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/toshokan/kashidashi/pkg/config"
	"github.com/toshokan/kashidashi/pkg/database"
	"github.com/toshokan/kashidashi/pkg/loans"
	"github.com/toshokan/kashidashi/pkg/migrations"
	"github.com/toshokan/kashidashi/pkg/models"
)

// Seeds a development database with a small circulation: a few readers,
// authors, categories, and books, plus one returned-late loan so a fine
// shows up in listings.
func main() {
	ctx := context.Background()
	log := logger.New()

	var opts struct {
		Loans bool `long:"loans" description:"Also create sample loans and a fine"`
	}

	_, err := flags.Parse(&opts)
	if err != nil {
		log.Err(err).Fatal("flags parse error")
	}

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	if _, err := migrations.BringUpToDate(ctx, db); err != nil {
		log.Err(err).Fatal("migrations error")
	}

	now := time.Now()

	authors := []*models.Author{
		{Name: "Natsume Soseki"},
		{Name: "Ursula K. Le Guin"},
	}
	for _, a := range authors {
		a.CreatedAt = now
		a.UpdatedAt = now
		if _, err := db.NewInsert().Model(a).Returning("*").Exec(ctx); err != nil {
			log.Err(err).Fatal("author insert error")
		}
	}

	categories := []*models.Category{
		{Name: "Fiction"},
		{Name: "Science Fiction"},
	}
	for _, c := range categories {
		c.CreatedAt = now
		c.UpdatedAt = now
		if _, err := db.NewInsert().Model(c).Returning("*").Exec(ctx); err != nil {
			log.Err(err).Fatal("category insert error")
		}
	}

	books := []*models.Book{
		{Title: "Kokoro", AuthorID: pointerutil.Int(authors[0].ID), CategoryID: pointerutil.Int(categories[0].ID), PublishYear: pointerutil.Int(1914)},
		{Title: "Botchan", AuthorID: pointerutil.Int(authors[0].ID), CategoryID: pointerutil.Int(categories[0].ID), PublishYear: pointerutil.Int(1906)},
		{Title: "The Dispossessed", AuthorID: pointerutil.Int(authors[1].ID), CategoryID: pointerutil.Int(categories[1].ID), PublishYear: pointerutil.Int(1974)},
	}
	for _, b := range books {
		b.IsAvailable = true
		b.CreatedAt = now
		b.UpdatedAt = now
		if _, err := db.NewInsert().Model(b).Returning("*").Exec(ctx); err != nil {
			log.Err(err).Fatal("book insert error")
		}
	}

	readers := []*models.Reader{
		{Name: "Aiko Tanaka", RegisteredOn: now.AddDate(-1, 0, 0)},
		{Name: "Ben Okafor", RegisteredOn: now.AddDate(0, -3, 0)},
	}
	for _, r := range readers {
		r.CreatedAt = now
		r.UpdatedAt = now
		if _, err := db.NewInsert().Model(r).Returning("*").Exec(ctx); err != nil {
			log.Err(err).Fatal("reader insert error")
		}
	}

	log.Info("seeded base records", logger.Data{
		"authors":    len(authors),
		"categories": len(categories),
		"books":      len(books),
		"readers":    len(readers),
	})

	if !opts.Loans {
		return
	}

	loanService := loans.NewService(db, cfg.FineDailyRate)

	// One loan still out, one returned five days late.
	outstanding := &models.Loan{
		ReaderID:   readers[0].ID,
		BookID:     books[0].ID,
		BorrowedAt: now.AddDate(0, 0, -3),
		DueAt:      now.AddDate(0, 0, 11),
	}
	if err := loanService.CreateLoan(ctx, outstanding); err != nil {
		log.Err(err).Fatal("loan insert error")
	}

	late := &models.Loan{
		ReaderID:   readers[1].ID,
		BookID:     books[2].ID,
		BorrowedAt: now.AddDate(0, 0, -20),
		DueAt:      now.AddDate(0, 0, -5),
	}
	if err := loanService.CreateLoan(ctx, late); err != nil {
		log.Err(err).Fatal("loan insert error")
	}
	if _, err := loanService.ReturnLoan(ctx, late.ID, now); err != nil {
		log.Err(err).Fatal("loan return error")
	}

	log.Info("seeded loans", logger.Data{"outstanding": outstanding.ID, "returned_late": late.ID})
}

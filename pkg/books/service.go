package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/toshokan/kashidashi/pkg/errcodes"
	"github.com/toshokan/kashidashi/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID *int
}

type ListBooksOptions struct {
	Limit      *int
	Offset     *int
	AuthorID   *int
	CategoryID *int
	Available  *bool
	Search     *string

	includeTotal bool
}

type UpdateBookOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// CreateBook adds a book to the catalog. New books always start available;
// only the loans service flips the flag after that.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt
	book.IsAvailable = true

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if book.AuthorID != nil {
			exists, err := tx.
				NewSelect().
				Model((*models.Author)(nil)).
				Where("a.id = ?", *book.AuthorID).
				Exists(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if !exists {
				return errcodes.NotFound("Author")
			}
		}
		if book.CategoryID != nil {
			exists, err := tx.
				NewSelect().
				Model((*models.Category)(nil)).
				Where("c.id = ?", *book.CategoryID).
				Exists(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
			if !exists {
				return errcodes.NotFound("Category")
			}
		}

		_, err := tx.
			NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Column("b.*").
		Relation("Author").
		Relation("Category")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Column("b.*").
		Relation("Author").
		Relation("Category").
		Order("b.title ASC")

	if opts.AuthorID != nil {
		q = q.Where("b.author_id = ?", *opts.AuthorID)
	}
	if opts.CategoryID != nil {
		q = q.Where("b.category_id = ?", *opts.CategoryID)
	}
	if opts.Available != nil {
		q = q.Where("b.is_available = ?", *opts.Available)
	}
	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("b.title LIKE ?", "%"+*opts.Search+"%")
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	book.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(book).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Book")
		}
		return errors.WithStack(err)
	}
	return nil
}

// DeleteBook removes the book along with its loan history and any fines
// hanging off those loans (ON DELETE CASCADE).
func (svc *Service) DeleteBook(ctx context.Context, id int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if affected == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}

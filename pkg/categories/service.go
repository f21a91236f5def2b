package categories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/toshokan/kashidashi/pkg/errcodes"
	"github.com/toshokan/kashidashi/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveCategoryOptions struct {
	ID   *int
	Name *string
}

type ListCategoriesOptions struct {
	Limit  *int
	Offset *int
	Search *string

	includeTotal bool
}

type UpdateCategoryOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// isUniqueNameError detects the sqlite unique index violation on
// categories.name.
func isUniqueNameError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (svc *Service) CreateCategory(ctx context.Context, category *models.Category) error {
	now := time.Now()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = category.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(category).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if isUniqueNameError(err) {
			return errcodes.Conflict("Category name already exists.")
		}
		return errors.WithStack(err)
	}
	return nil
}

func (svc *Service) RetrieveCategory(ctx context.Context, opts RetrieveCategoryOptions) (*models.Category, error) {
	category := &models.Category{}

	q := svc.db.
		NewSelect().
		Model(category).
		Column("c.*").
		ColumnExpr("(SELECT COUNT(*) FROM books b WHERE b.category_id = c.id) AS book_count")

	if opts.ID != nil {
		q = q.Where("c.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		// Case-insensitive match
		q = q.Where("LOWER(c.name) = LOWER(?)", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Category")
		}
		return nil, errors.WithStack(err)
	}

	return category, nil
}

func (svc *Service) ListCategories(ctx context.Context, opts ListCategoriesOptions) ([]*models.Category, error) {
	c, _, err := svc.listCategoriesWithTotal(ctx, opts)
	return c, errors.WithStack(err)
}

func (svc *Service) ListCategoriesWithTotal(ctx context.Context, opts ListCategoriesOptions) ([]*models.Category, int, error) {
	opts.includeTotal = true
	return svc.listCategoriesWithTotal(ctx, opts)
}

func (svc *Service) listCategoriesWithTotal(ctx context.Context, opts ListCategoriesOptions) ([]*models.Category, int, error) {
	categories := []*models.Category{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&categories).
		Column("c.*").
		ColumnExpr("(SELECT COUNT(*) FROM books b WHERE b.category_id = c.id) AS book_count").
		Order("c.name ASC")

	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("c.name LIKE ?", "%"+*opts.Search+"%")
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

	return categories, total, nil
}

func (svc *Service) UpdateCategory(ctx context.Context, category *models.Category, opts UpdateCategoryOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	category.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(category).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Category")
		}
		if isUniqueNameError(err) {
			return errcodes.Conflict("Category name already exists.")
		}
		return errors.WithStack(err)
	}
	return nil
}

// DeleteCategory removes the category; books referencing it keep existing
// with a null category reference (ON DELETE SET NULL).
func (svc *Service) DeleteCategory(ctx context.Context, id int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Category)(nil)).
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
		return errcodes.NotFound("Category")
	}
	return nil
}

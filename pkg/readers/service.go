package readers

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/toshokan/kashidashi/pkg/errcodes"
	"github.com/toshokan/kashidashi/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveReaderOptions struct {
	ID *int
}

type ListReadersOptions struct {
	Limit  *int
	Offset *int
	Search *string

	includeTotal bool
}

type UpdateReaderOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateReader(ctx context.Context, reader *models.Reader) error {
	now := time.Now()
	if reader.CreatedAt.IsZero() {
		reader.CreatedAt = now
	}
	reader.UpdatedAt = reader.CreatedAt
	if reader.RegisteredOn.IsZero() {
		reader.RegisteredOn = now
	}

	_, err := svc.db.
		NewInsert().
		Model(reader).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveReader(ctx context.Context, opts RetrieveReaderOptions) (*models.Reader, error) {
	reader := &models.Reader{}

	q := svc.db.
		NewSelect().
		Model(reader).
		Column("r.*").
		ColumnExpr("(SELECT COUNT(*) FROM loans l WHERE l.reader_id = r.id) AS loan_count")

	if opts.ID != nil {
		q = q.Where("r.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Reader")
		}
		return nil, errors.WithStack(err)
	}

	return reader, nil
}

func (svc *Service) ListReaders(ctx context.Context, opts ListReadersOptions) ([]*models.Reader, error) {
	r, _, err := svc.listReadersWithTotal(ctx, opts)
	return r, errors.WithStack(err)
}

func (svc *Service) ListReadersWithTotal(ctx context.Context, opts ListReadersOptions) ([]*models.Reader, int, error) {
	opts.includeTotal = true
	return svc.listReadersWithTotal(ctx, opts)
}

func (svc *Service) listReadersWithTotal(ctx context.Context, opts ListReadersOptions) ([]*models.Reader, int, error) {
	readers := []*models.Reader{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&readers).
		Column("r.*").
		ColumnExpr("(SELECT COUNT(*) FROM loans l WHERE l.reader_id = r.id) AS loan_count").
		Order("r.name ASC")

	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("r.name LIKE ?", "%"+*opts.Search+"%")
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

	return readers, total, nil
}

func (svc *Service) UpdateReader(ctx context.Context, reader *models.Reader, opts UpdateReaderOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	reader.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(reader).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Reader")
		}
		return errors.WithStack(err)
	}
	return nil
}

// DeleteReader removes the reader and their entire borrow history, fines
// included (ON DELETE CASCADE through loans).
func (svc *Service) DeleteReader(ctx context.Context, id int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Reader)(nil)).
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
		return errcodes.NotFound("Reader")
	}
	return nil
}

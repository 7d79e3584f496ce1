package logstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/trafficmon/pkg/pg"
	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

// Postgres stores records in PostgreSQL through a pgx pool. Apply
// PostgresMigrations with pg.Migrate before use.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Insert(ctx context.Context, rec *requestlog.Record) error {
	b := &builder{d: postgresDialect}
	err := s.pool.QueryRow(ctx, b.insert()+" RETURNING id", insertArgs(postgresDialect, rec)...).Scan(&rec.ID)
	if err != nil {
		return errors.Join(ErrInsert, err)
	}
	return nil
}

// InsertBatch sends all inserts in one round trip.
func (s *Postgres) InsertBatch(ctx context.Context, recs []*requestlog.Record) error {
	if len(recs) == 0 {
		return nil
	}

	stmt := (&builder{d: postgresDialect}).insert() + " RETURNING id"
	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(stmt, insertArgs(postgresDialect, rec)...)
	}

	br := s.pool.SendBatch(ctx, batch)
	var errs []error
	for _, rec := range recs {
		if err := br.QueryRow().Scan(&rec.ID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := br.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInsert}, errs...)...)
	}
	return nil
}

func (s *Postgres) Query(ctx context.Context, q requestlog.Query) ([]requestlog.Record, int64, error) {
	q = q.Normalize()

	countSQL, countArgs := (&builder{d: postgresDialect}).count(q)
	var total int64
	if err := s.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, errors.Join(ErrQuery, err)
	}
	if total == 0 {
		return []requestlog.Record{}, 0, nil
	}

	pageSQL, pageArgs := (&builder{d: postgresDialect}).selectPage(q)
	rows, err := s.pool.Query(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, errors.Join(ErrQuery, err)
	}
	defer rows.Close()

	out := make([]requestlog.Record, 0, q.PerPage)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, errors.Join(ErrQuery, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Join(ErrQuery, err)
	}
	return out, total, nil
}

func (s *Postgres) Get(ctx context.Context, id int64) (requestlog.Record, error) {
	b := &builder{d: postgresDialect}
	stmt := "SELECT " + joinColumns(selectColumns) + " FROM " + table + " WHERE id = " + b.arg(id)

	rec, err := scanRecord(s.pool.QueryRow(ctx, stmt, b.args...))
	if pg.IsNotFoundError(err) {
		return requestlog.Record{}, requestlog.ErrNotFound
	}
	if err != nil {
		return requestlog.Record{}, errors.Join(ErrQuery, err)
	}
	return rec, nil
}

func (s *Postgres) Delete(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.exec(ctx, "DELETE FROM "+table+" WHERE id = ANY($1)", ids)
}

func (s *Postgres) DeleteAll(ctx context.Context) (int64, error) {
	return s.exec(ctx, "DELETE FROM "+table)
}

func (s *Postgres) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.exec(ctx, "DELETE FROM "+table+" WHERE captured_at < $1", cutoff.UTC())
}

func (s *Postgres) exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	tag, err := s.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, errors.Join(ErrDelete, err)
	}
	return tag.RowsAffected(), nil
}

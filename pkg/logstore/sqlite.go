package logstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

// SQLite stores records through database/sql with the modernc driver opened
// by sqlite.Open. Apply SQLiteMigrations with sqlite.Migrate before use.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) Insert(ctx context.Context, rec *requestlog.Record) error {
	res, err := s.db.ExecContext(ctx, (&builder{d: sqliteDialect}).insert(), insertArgs(sqliteDialect, rec)...)
	if err != nil {
		return errors.Join(ErrInsert, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Join(ErrInsert, err)
	}
	rec.ID = id
	return nil
}

// InsertBatch writes recs in a single transaction. Either all rows are stored
// or none.
func (s *SQLite) InsertBatch(ctx context.Context, recs []*requestlog.Record) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Join(ErrInsert, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, (&builder{d: sqliteDialect}).insert())
	if err != nil {
		return errors.Join(ErrInsert, err)
	}
	defer stmt.Close()

	ids := make([]int64, len(recs))
	for i, rec := range recs {
		res, err := stmt.ExecContext(ctx, insertArgs(sqliteDialect, rec)...)
		if err != nil {
			return errors.Join(ErrInsert, err)
		}
		if ids[i], err = res.LastInsertId(); err != nil {
			return errors.Join(ErrInsert, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Join(ErrInsert, err)
	}
	for i, rec := range recs {
		rec.ID = ids[i]
	}
	return nil
}

func (s *SQLite) Query(ctx context.Context, q requestlog.Query) ([]requestlog.Record, int64, error) {
	q = q.Normalize()

	countSQL, countArgs := (&builder{d: sqliteDialect}).count(q)
	var total int64
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, errors.Join(ErrQuery, err)
	}
	if total == 0 {
		return []requestlog.Record{}, 0, nil
	}

	pageSQL, pageArgs := (&builder{d: sqliteDialect}).selectPage(q)
	rows, err := s.db.QueryContext(ctx, pageSQL, pageArgs...)
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

func (s *SQLite) Get(ctx context.Context, id int64) (requestlog.Record, error) {
	stmt := "SELECT " + joinColumns(selectColumns) + " FROM " + table + " WHERE id = ?"
	rec, err := scanRecord(s.db.QueryRowContext(ctx, stmt, id))
	if errors.Is(err, sql.ErrNoRows) {
		return requestlog.Record{}, requestlog.ErrNotFound
	}
	if err != nil {
		return requestlog.Record{}, errors.Join(ErrQuery, err)
	}
	return rec, nil
}

func (s *SQLite) Delete(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	return s.exec(ctx, "DELETE FROM "+table+" WHERE id IN ("+ph+")", args...)
}

func (s *SQLite) DeleteAll(ctx context.Context) (int64, error) {
	return s.exec(ctx, "DELETE FROM "+table)
}

func (s *SQLite) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.exec(ctx, "DELETE FROM "+table+" WHERE captured_at < ?", sqliteDialect.timeArg(cutoff))
}

func (s *SQLite) exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, errors.Join(ErrDelete, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Join(ErrDelete, err)
	}
	return n, nil
}

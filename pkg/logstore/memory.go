package logstore

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

// Memory keeps records in a concurrent map. Contents are lost on restart;
// it backs tests and single-node trials.
type Memory struct {
	records *xsync.Map[int64, requestlog.Record]
	nextID  atomic.Int64
}

func NewMemory() *Memory {
	return &Memory{records: xsync.NewMap[int64, requestlog.Record]()}
}

func (m *Memory) Insert(_ context.Context, rec *requestlog.Record) error {
	rec.ID = m.nextID.Add(1)
	m.records.Store(rec.ID, *rec)
	return nil
}

func (m *Memory) InsertBatch(ctx context.Context, recs []*requestlog.Record) error {
	for _, rec := range recs {
		if err := m.Insert(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) Query(_ context.Context, q requestlog.Query) ([]requestlog.Record, int64, error) {
	q = q.Normalize()

	var matched []requestlog.Record
	m.records.Range(func(_ int64, rec requestlog.Record) bool {
		if q.Matches(rec) {
			matched = append(matched, rec)
		}
		return true
	})

	slices.SortFunc(matched, func(a, b requestlog.Record) int {
		c := compareColumn(a, b, q.OrderBy)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if q.Desc {
			return -c
		}
		return c
	})

	total := int64(len(matched))
	start := min(q.Offset(), len(matched))
	end := min(start+q.PerPage, len(matched))
	return slices.Clone(matched[start:end]), total, nil
}

func compareColumn(a, b requestlog.Record, column string) int {
	switch column {
	case requestlog.ColumnID:
		return cmp.Compare(a.ID, b.ID)
	case requestlog.ColumnCapturedAt:
		return a.CapturedAt.Compare(b.CapturedAt)
	case requestlog.ColumnStatusCode:
		return cmp.Compare(a.StatusCode(), b.StatusCode())
	default:
		return strings.Compare(a.Text(column), b.Text(column))
	}
}

func (m *Memory) Get(_ context.Context, id int64) (requestlog.Record, error) {
	rec, ok := m.records.Load(id)
	if !ok {
		return requestlog.Record{}, requestlog.ErrNotFound
	}
	return rec, nil
}

func (m *Memory) Delete(_ context.Context, ids ...int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := m.records.LoadAndDelete(id); ok {
			n++
		}
	}
	return n, nil
}

func (m *Memory) DeleteAll(_ context.Context) (int64, error) {
	n := int64(m.records.Size())
	m.records.Clear()
	return n, nil
}

func (m *Memory) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	m.records.Range(func(id int64, rec requestlog.Record) bool {
		if rec.CapturedAt.Before(cutoff) {
			if _, ok := m.records.LoadAndDelete(id); ok {
				n++
			}
		}
		return true
	})
	return n, nil
}

package admin

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/dmitrymomot/trafficmon/pkg/handler"
	"github.com/dmitrymomot/trafficmon/pkg/logger"
	"github.com/dmitrymomot/trafficmon/pkg/nonce"
	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

// ExportPrefix starts every export file name. Earlier exports sharing it are
// removed before a new one is written.
const ExportPrefix = "traffic-log-"

// RecordQuerier reads one page of records and the total match count.
// requestlog.Sink satisfies it.
type RecordQuerier interface {
	Query(ctx context.Context, q requestlog.Query) ([]requestlog.Record, int64, error)
}

// export writes the selected records, or all records when ids is empty, to
// a CSV file ordered by id. Rows are spooled page by page into a temporary
// file and the finished file is handed to the export store.
func (a *API) export(ctx handler.Context, ids []int64) handler.Response {
	if a.exports == nil {
		return handler.JSONError(ErrExportFailed)
	}

	spool, err := os.CreateTemp("", ExportPrefix+"*.csv")
	if err != nil {
		a.log.ErrorContext(ctx, "failed to create export spool", logger.Component("admin"), logger.Error(err))
		return handler.JSONError(ErrExportFailed)
	}
	defer func() {
		_ = spool.Close()
		_ = os.Remove(spool.Name())
	}()

	n, err := WriteCSV(ctx, spool, a.sink, ids)
	if err != nil {
		a.log.ErrorContext(ctx, "failed to write export", logger.Component("admin"), logger.Error(err))
		return handler.JSONError(ErrExportFailed)
	}
	if n == 0 {
		return handler.JSONError(ErrNoRecords)
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		a.log.ErrorContext(ctx, "failed to rewind export spool", logger.Component("admin"), logger.Error(err))
		return handler.JSONError(ErrExportFailed)
	}

	if _, err := a.exports.DeletePrefix(ctx, ExportPrefix); err != nil {
		a.log.WarnContext(ctx, "failed to remove old exports", logger.Component("admin"), logger.Error(err))
	}

	name := fmt.Sprintf("%s%s-%d.csv", ExportPrefix, nonce.New(), a.now().Unix())
	url, err := a.exports.Put(ctx, name, spool)
	if err != nil {
		a.log.ErrorContext(ctx, "failed to store export", logger.Component("admin"), logger.Error(err))
		return handler.JSONError(ErrExportFailed)
	}

	a.log.InfoContext(ctx, "request logs exported",
		logger.Component("admin"),
		logger.Count(n),
		logger.Path(url),
	)
	return handler.JSON(Message{
		Message: fmt.Sprintf("Total records exported: %d", n),
		URL:     url,
		File:    name,
		Count:   n,
	})
}

// WriteCSV writes a header row of requestlog.Columns followed by one row per
// record matching ids, or every record when ids is empty, ordered by id.
// Records are read MaxPerPage at a time and each page is flushed to w before
// the next one is queried. It returns the number of rows written.
func WriteCSV(ctx context.Context, w io.Writer, src RecordQuerier, ids []int64) (int64, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(requestlog.Columns); err != nil {
		return 0, err
	}

	q := requestlog.Query{
		OrderBy: requestlog.ColumnID,
		PerPage: requestlog.MaxPerPage,
		IDs:     ids,
	}
	row := make([]string, len(requestlog.Columns))

	var written int64
	for page := 1; ; page++ {
		q.Page = page
		recs, total, err := src.Query(ctx, q)
		if err != nil {
			return written, err
		}
		for _, rec := range recs {
			for i, col := range requestlog.Columns {
				row[i] = rec.Text(col)
			}
			if err := cw.Write(row); err != nil {
				return written, err
			}
		}
		written += int64(len(recs))

		cw.Flush()
		if err := cw.Error(); err != nil {
			return written, err
		}
		if len(recs) == 0 || written >= total {
			return written, nil
		}
	}
}

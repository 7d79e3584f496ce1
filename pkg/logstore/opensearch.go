package logstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

var indexMapping = map[string]any{
	"mappings": map[string]any{
		"dynamic": "strict",
		"properties": func() map[string]any {
			props := map[string]any{
				"id":               map[string]any{"type": "long"},
				"captured_at":      map[string]any{"type": "date"},
				"captured_at_text": map[string]any{"type": "keyword"},
				"status_code":      map[string]any{"type": "integer"},
				"status_code_text": map[string]any{"type": "keyword"},
			}
			for _, col := range requestlog.Columns {
				if _, ok := props[col]; !ok {
					props[col] = map[string]any{"type": "keyword", "ignore_above": 1024}
				}
			}
			return props
		}(),
	},
}

// OpenSearch stores records as documents in one index. IDs are derived from
// the insert time in microseconds and kept strictly increasing per process.
type OpenSearch struct {
	client *opensearch.Client
	index  string

	mu     sync.Mutex
	lastID int64
}

func NewOpenSearch(client *opensearch.Client, index string) *OpenSearch {
	return &OpenSearch{client: client, index: index}
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (s *OpenSearch) EnsureIndex(ctx context.Context) error {
	res, err := opensearchapi.IndicesExistsRequest{Index: []string{s.index}}.Do(ctx, s.client)
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	body, err := json.Marshal(indexMapping)
	if err != nil {
		return err
	}
	res, err = opensearchapi.IndicesCreateRequest{Index: s.index, Body: bytes.NewReader(body)}.Do(ctx, s.client)
	if err != nil {
		return err
	}
	return responseError(res)
}

func (s *OpenSearch) nextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID = max(s.lastID+1, time.Now().UnixMicro())
	return s.lastID
}

func (s *OpenSearch) Insert(ctx context.Context, rec *requestlog.Record) error {
	doc := toDocument(rec)
	doc.ID = s.nextID()

	body, err := json.Marshal(doc)
	if err != nil {
		return errors.Join(ErrInsert, err)
	}
	res, err := opensearchapi.IndexRequest{
		Index:      s.index,
		DocumentID: strconv.FormatInt(doc.ID, 10),
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}.Do(ctx, s.client)
	if err != nil {
		return errors.Join(ErrInsert, err)
	}
	if err := responseError(res); err != nil {
		return errors.Join(ErrInsert, err)
	}
	rec.ID = doc.ID
	return nil
}

// InsertBatch writes recs with one bulk request.
func (s *OpenSearch) InsertBatch(ctx context.Context, recs []*requestlog.Record) error {
	if len(recs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	ids := make([]int64, len(recs))
	for i, rec := range recs {
		doc := toDocument(rec)
		doc.ID = s.nextID()
		ids[i] = doc.ID

		meta := map[string]any{"index": map[string]any{"_index": s.index, "_id": strconv.FormatInt(doc.ID, 10)}}
		if err := enc.Encode(meta); err != nil {
			return errors.Join(ErrInsert, err)
		}
		if err := enc.Encode(doc); err != nil {
			return errors.Join(ErrInsert, err)
		}
	}

	res, err := opensearchapi.BulkRequest{Body: &buf}.Do(ctx, s.client)
	if err != nil {
		return errors.Join(ErrInsert, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.Join(ErrInsert, fmt.Errorf("bulk: %s", res.Status()))
	}

	var out struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return errors.Join(ErrInsert, err)
	}
	if out.Errors {
		return errors.Join(ErrInsert, errors.New("bulk: some documents were rejected"))
	}
	for i, rec := range recs {
		rec.ID = ids[i]
	}
	return nil
}

func openSearchQuery(q requestlog.Query) map[string]any {
	var filter []any
	if len(q.IDs) > 0 {
		filter = append(filter, map[string]any{"terms": map[string]any{"id": q.IDs}})
	}

	boolQuery := map[string]any{}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	if q.Search != "" {
		value := "*" + escapeWildcard(q.Search) + "*"
		should := make([]any, 0, len(requestlog.SearchColumns))
		for _, col := range requestlog.SearchColumns {
			should = append(should, map[string]any{
				"wildcard": map[string]any{
					mongoSearchField(col): map[string]any{"value": value, "case_insensitive": true},
				},
			})
		}
		boolQuery["should"] = should
		boolQuery["minimum_should_match"] = 1
	}

	if len(boolQuery) == 0 {
		return map[string]any{"match_all": map[string]any{}}
	}
	return map[string]any{"bool": boolQuery}
}

func escapeWildcard(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`).Replace(s)
}

func (s *OpenSearch) Query(ctx context.Context, q requestlog.Query) ([]requestlog.Record, int64, error) {
	q = q.Normalize()

	order := "asc"
	if q.Desc {
		order = "desc"
	}
	sortField := q.OrderBy
	if sortField == requestlog.ColumnID {
		sortField = "id"
	}
	body, err := json.Marshal(map[string]any{
		"from":             q.Offset(),
		"size":             q.PerPage,
		"track_total_hits": true,
		"query":            openSearchQuery(q),
		"sort": []any{
			map[string]any{sortField: map[string]any{"order": order, "unmapped_type": "keyword"}},
			map[string]any{"id": map[string]any{"order": order}},
		},
	})
	if err != nil {
		return nil, 0, errors.Join(ErrQuery, err)
	}

	res, err := opensearchapi.SearchRequest{Index: []string{s.index}, Body: bytes.NewReader(body)}.Do(ctx, s.client)
	if err != nil {
		return nil, 0, errors.Join(ErrQuery, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, errors.Join(ErrQuery, fmt.Errorf("search: %s", res.Status()))
	}

	var out struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, 0, errors.Join(ErrQuery, err)
	}

	recs := make([]requestlog.Record, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		recs = append(recs, h.Source.record())
	}
	return recs, out.Hits.Total.Value, nil
}

func (s *OpenSearch) Get(ctx context.Context, id int64) (requestlog.Record, error) {
	res, err := opensearchapi.GetRequest{Index: s.index, DocumentID: strconv.FormatInt(id, 10)}.Do(ctx, s.client)
	if err != nil {
		return requestlog.Record{}, errors.Join(ErrQuery, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return requestlog.Record{}, requestlog.ErrNotFound
	}
	if res.IsError() {
		return requestlog.Record{}, errors.Join(ErrQuery, fmt.Errorf("get: %s", res.Status()))
	}

	var out struct {
		Found  bool     `json:"found"`
		Source document `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return requestlog.Record{}, errors.Join(ErrQuery, err)
	}
	if !out.Found {
		return requestlog.Record{}, requestlog.ErrNotFound
	}
	return out.Source.record(), nil
}

func (s *OpenSearch) Delete(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	return s.deleteByQuery(ctx, map[string]any{"terms": map[string]any{"id": ids}})
}

func (s *OpenSearch) DeleteAll(ctx context.Context) (int64, error) {
	return s.deleteByQuery(ctx, map[string]any{"match_all": map[string]any{}})
}

func (s *OpenSearch) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteByQuery(ctx, map[string]any{
		"range": map[string]any{"captured_at": map[string]any{"lt": cutoff.UTC().Format(time.RFC3339Nano)}},
	})
}

func (s *OpenSearch) deleteByQuery(ctx context.Context, query map[string]any) (int64, error) {
	body, err := json.Marshal(map[string]any{"query": query})
	if err != nil {
		return 0, errors.Join(ErrDelete, err)
	}
	refresh := true
	res, err := opensearchapi.DeleteByQueryRequest{
		Index:   []string{s.index},
		Body:    bytes.NewReader(body),
		Refresh: &refresh,
	}.Do(ctx, s.client)
	if err != nil {
		return 0, errors.Join(ErrDelete, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, errors.Join(ErrDelete, fmt.Errorf("delete_by_query: %s", res.Status()))
	}

	var out struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return 0, errors.Join(ErrDelete, err)
	}
	return out.Deleted, nil
}

func responseError(res *opensearchapi.Response) error {
	defer res.Body.Close()
	if !res.IsError() {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("opensearch: %s: %s", res.Status(), bytes.TrimSpace(msg))
}

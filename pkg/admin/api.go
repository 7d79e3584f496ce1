package admin

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dmitrymomot/trafficmon/pkg/binder"
	"github.com/dmitrymomot/trafficmon/pkg/exportstore"
	"github.com/dmitrymomot/trafficmon/pkg/handler"
	"github.com/dmitrymomot/trafficmon/pkg/logger"
	"github.com/dmitrymomot/trafficmon/pkg/requestlog"
)

// API serves stored records to administrators.
type API struct {
	cfg      Config
	sink     requestlog.Sink
	exports  exportstore.Store
	validate *validator.Validate
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*API)

func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *API) {
		if now != nil {
			a.now = now
		}
	}
}

// New returns the API. exports may be nil, in which case export actions fail.
func New(cfg Config, sink requestlog.Sink, exports exportstore.Store, opts ...Option) *API {
	a := &API{
		cfg:      cfg,
		sink:     sink,
		exports:  exports,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      logger.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns the routes guarded by basic auth, ready to be mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(BasicAuth(a.cfg))

	r.Get("/logs", handler.Wrap(
		a.list,
		handler.WithBinders[ListRequest](binder.Query()),
		handler.WithValidator[ListRequest](a.validate),
		handler.WithLogger[ListRequest](a.log),
	))
	r.Get("/logs/{id}", handler.Wrap(
		a.get,
		handler.WithBinders[GetRequest](binder.Path()),
		handler.WithValidator[GetRequest](a.validate),
		handler.WithLogger[GetRequest](a.log),
	))
	r.Post("/logs/bulk", handler.Wrap(
		a.bulk,
		handler.WithBinders[BulkRequest](binder.Body()),
		handler.WithValidator[BulkRequest](a.validate),
		handler.WithLogger[BulkRequest](a.log),
	))
	r.Get("/exports/{name}", handler.Wrap(
		a.download,
		handler.WithBinders[DownloadRequest](binder.Path()),
		handler.WithLogger[DownloadRequest](a.log),
	))

	return r
}

type ListRequest struct {
	Search  string `query:"search" validate:"max=255"`
	OrderBy string `query:"orderby" validate:"omitempty,max=64"`
	Order   string `query:"order" validate:"omitempty,oneof=asc desc ASC DESC"`
	Page    int    `query:"page" validate:"gte=0"`
	PerPage int    `query:"per_page" validate:"gte=0"`
}

// Query converts the request. Descending is the default order.
func (r ListRequest) Query() requestlog.Query {
	return requestlog.Query{
		Search:  r.Search,
		OrderBy: strings.ToLower(r.OrderBy),
		Desc:    !strings.EqualFold(r.Order, "asc"),
		Page:    r.Page,
		PerPage: r.PerPage,
	}.Normalize()
}

func (a *API) list(ctx handler.Context, req ListRequest) handler.Response {
	q := req.Query()
	recs, total, err := a.sink.Query(ctx, q)
	if err != nil {
		a.log.ErrorContext(ctx, "failed to query request logs", logger.Component("admin"), logger.Error(err))
		return handler.JSONError(err)
	}
	if recs == nil {
		recs = []requestlog.Record{}
	}

	pages := (total + int64(q.PerPage) - 1) / int64(q.PerPage)
	return handler.JSON(recs, handler.WithJSONMeta(map[string]any{
		"total":    total,
		"page":     q.Page,
		"per_page": q.PerPage,
		"pages":    pages,
		"orderby":  q.OrderBy,
		"order":    orderName(q.Desc),
	}))
}

func orderName(desc bool) string {
	if desc {
		return "desc"
	}
	return "asc"
}

type GetRequest struct {
	ID int64 `path:"id" validate:"gt=0"`
}

func (a *API) get(ctx handler.Context, req GetRequest) handler.Response {
	rec, err := a.sink.Get(ctx, req.ID)
	if errors.Is(err, requestlog.ErrNotFound) {
		return handler.JSONError(ErrRecordNotFound)
	}
	if err != nil {
		a.log.ErrorContext(ctx, "failed to load request log",
			logger.Component("admin"),
			logger.RecordID(req.ID),
			logger.Error(err),
		)
		return handler.JSONError(err)
	}
	return handler.JSON(rec)
}

type DownloadRequest struct {
	Name string `path:"name"`
}

func (a *API) download(ctx handler.Context, req DownloadRequest) handler.Response {
	if a.exports == nil {
		return handler.JSONError(ErrExportNotFound)
	}
	body, err := a.exports.Open(ctx, req.Name)
	if errors.Is(err, exportstore.ErrNotFound) || errors.Is(err, exportstore.ErrInvalidName) {
		return handler.JSONError(ErrExportNotFound)
	}
	if err != nil {
		a.log.ErrorContext(ctx, "failed to open export", logger.Component("admin"), logger.Error(err))
		return handler.JSONError(err)
	}
	return handler.Attachment("text/csv; charset=utf-8", req.Name, body)
}

// Message is the body of bulk action replies.
type Message struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
	File    string `json:"file,omitempty"`
	Count   int64  `json:"count"`
}

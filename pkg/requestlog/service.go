package requestlog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/trafficmon/pkg/dedup"
	"github.com/dmitrymomot/trafficmon/pkg/logger"
	"github.com/dmitrymomot/trafficmon/pkg/nonce"
)

// Deduper reports whether a nonce and client IP pair is seen for the first time.
type Deduper interface {
	ShouldLog(ctx context.Context, nonce, clientIP string) (bool, error)
}

// Observer receives pipeline events, typically for metrics.
type Observer interface {
	ObserveOutcome(origin, status string)
	ObserveSinkError(origin string)
	ObserveDedupError()
}

type noopObserver struct{}

func (noopObserver) ObserveOutcome(string, string) {}
func (noopObserver) ObserveSinkError(string)       {}
func (noopObserver) ObserveDedupError()            {}

// Inbound is one request handed to the pipeline.
type Inbound struct {
	Origin  Origin
	Request *http.Request
	// Status is the response status written by the host handler. DIRECT only.
	Status int
	// Fields are the posted beacon values. BEACON only.
	Fields BeaconFields
	// Nonce is the page nonce for DIRECT requests. One is minted when empty.
	Nonce string
}

// Service runs the logging pipeline.
type Service struct {
	cfg       Config
	sink      Sink
	guard     Deduper
	extractor *Extractor
	observer  Observer
	log       *slog.Logger
}

type ServiceOption func(*Service)

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithObserver(o Observer) ServiceOption {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

func WithExtractor(e *Extractor) ServiceOption {
	return func(s *Service) {
		if e != nil {
			s.extractor = e
		}
	}
}

func NewService(cfg Config, sink Sink, guard Deduper, opts ...ServiceOption) *Service {
	s := &Service{
		cfg:      cfg,
		sink:     sink,
		guard:    guard,
		observer: noopObserver{},
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = NewExtractor(WithDefaultRole(cfg.DefaultRole))
	}
	return s
}

// Config returns the classification settings the service was built with.
func (s *Service) Config() Config { return s.cfg }

// HandleInbound runs the pipeline for one request and reports the outcome.
// It does not return errors: dedup store and sink failures are logged and
// counted while the ack stays unaffected.
func (s *Service) HandleInbound(ctx context.Context, in Inbound) Ack {
	var ack Ack
	switch in.Origin {
	case OriginDirect:
		ack = s.direct(ctx, in)
	case OriginBeacon:
		ack = s.beacon(ctx, in)
	default:
		ack = ignored(MessageNotLogged)
	}

	s.observer.ObserveOutcome(in.Origin.String(), string(ack.Status))
	if ack.Status != StatusLogged {
		s.log.DebugContext(ctx, "request not logged",
			logger.Origin(in.Origin.String()),
			logger.Outcome(string(ack.Status)),
			slog.String("reason", ack.Message),
		)
	}
	return ack
}

func (s *Service) direct(ctx context.Context, in Inbound) Ack {
	r := in.Request
	if r == nil {
		return ignored(MessageNotLogged)
	}
	if !acceptsHTML(r.Header.Get("Accept")) {
		return ignored(MessageNotHTML)
	}
	if s.cfg.isStatic(r.RequestURI) {
		return ignored(MessageStatic)
	}

	token := in.Nonce
	if token == "" {
		token = nonce.FromContext(ctx)
	}
	if token == "" {
		token = nonce.New()
	}

	rec := s.extractor.Direct(r, in.Status)
	return s.commit(ctx, token, &rec)
}

func (s *Service) beacon(ctx context.Context, in Inbound) Ack {
	r := in.Request
	if r == nil {
		return ignored(MessageNotLogged)
	}
	f := in.Fields
	if s.cfg.isStatic(f.RequestURL) {
		return ignored(MessageStatic)
	}
	if f.Nonce == "" {
		return rejected(MessageNoToken)
	}
	if !nonce.Valid(f.Nonce) {
		return rejected(MessageBadToken)
	}
	if isLocalhost(f.RequestURL) {
		return ignored(MessageLocalhost)
	}

	rec := s.extractor.Beacon(r, f)
	return s.commit(ctx, f.Nonce, &rec)
}

// commit claims the dedup slot and inserts rec. The slot is taken before the
// insert so concurrent duplicates never reach the sink.
func (s *Service) commit(ctx context.Context, token string, rec *Record) Ack {
	ok, err := s.guard.ShouldLog(ctx, token, rec.ClientIP)
	switch {
	case errors.Is(err, dedup.ErrMissingNonce):
		return rejected(MessageNoToken)
	case err != nil:
		s.observer.ObserveDedupError()
		s.log.WarnContext(ctx, "dedup store unavailable, logging anyway",
			logger.Origin(rec.Origin.String()),
			logger.ClientIP(rec.ClientIP),
			logger.Error(err),
		)
	}
	if !ok {
		return duplicate()
	}

	// The client may hang up once its response is written; the insert must not
	// be cancelled with it.
	if err := s.sink.Insert(context.WithoutCancel(ctx), rec); err != nil {
		s.observer.ObserveSinkError(rec.Origin.String())
		s.log.ErrorContext(ctx, "failed to store request record",
			logger.Origin(rec.Origin.String()),
			logger.Path(rec.TargetPath),
			logger.ClientIP(rec.ClientIP),
			logger.Error(err),
		)
		return logged()
	}

	s.log.DebugContext(ctx, "request logged",
		logger.Origin(rec.Origin.String()),
		logger.RecordID(rec.ID),
		logger.Path(rec.TargetPath),
	)
	return logged()
}

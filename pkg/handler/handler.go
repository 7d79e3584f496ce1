package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrymomot/trafficmon/pkg/binder"
	"github.com/dmitrymomot/trafficmon/pkg/logger"
)

// HandlerFunc handles a decoded request of type R.
type HandlerFunc[R any] func(ctx Context, req R) Response

// Bind decodes part of a request into v.
type Bind func(r *http.Request, v any) error

type wrapConfig[R any] struct {
	binders  []Bind
	validate *validator.Validate
	log      *slog.Logger
}

type WrapOption[R any] func(*wrapConfig[R])

// WithBinders sets binders applied in order. Binders reporting
// binder.ErrBinderNotApplicable are skipped.
func WithBinders[R any](binders ...Bind) WrapOption[R] {
	return func(c *wrapConfig[R]) { c.binders = append(c.binders, binders...) }
}

// WithValidator validates the bound request with go-playground/validator
// struct tags before the handler runs.
func WithValidator[R any](v *validator.Validate) WrapOption[R] {
	return func(c *wrapConfig[R]) { c.validate = v }
}

// WithLogger sets the logger for render failures and internal errors.
func WithLogger[R any](l *slog.Logger) WrapOption[R] {
	return func(c *wrapConfig[R]) {
		if l != nil {
			c.log = l
		}
	}
}

// Wrap converts h into an http.HandlerFunc.
func Wrap[R any](h HandlerFunc[R], opts ...WrapOption[R]) http.HandlerFunc {
	cfg := &wrapConfig[R]{log: logger.Discard()}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(w, r)

		var req R
		for _, bind := range cfg.binders {
			if err := bind(r, &req); err != nil {
				if errors.Is(err, binder.ErrBinderNotApplicable) {
					continue
				}
				cfg.render(ctx, JSONError(bindError(err)))
				return
			}
		}

		if cfg.validate != nil {
			if err := cfg.validate.StructCtx(ctx, req); err != nil {
				cfg.render(ctx, JSONError(validationError(err)))
				return
			}
		}

		resp := h(ctx, req)
		if resp == nil {
			cfg.log.ErrorContext(ctx, "handler returned nil response", logger.Path(r.URL.Path))
			resp = JSONError(ErrNilResponse)
		}
		cfg.render(ctx, resp)
	}
}

func (c *wrapConfig[R]) render(ctx Context, resp Response) {
	if err := resp.Render(ctx.ResponseWriter(), ctx.Request()); err != nil {
		c.log.ErrorContext(ctx, "failed to render response",
			logger.Path(ctx.Request().URL.Path),
			logger.Error(err),
		)
	}
}

func bindError(err error) error {
	if errors.Is(err, binder.ErrUnsupportedMediaType) {
		return ErrUnsupportedMedia
	}
	return ErrBadRequest.WithMessage("%s", err.Error())
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ErrBadRequest
	}
	out := make(ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), validationMessage(fe))
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// MaxBodySize bounds form and JSON bodies.
const MaxBodySize = 1 << 20

// Query binds URL query parameters into query-tagged fields.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindValues(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}

// Form binds urlencoded or multipart form fields into form-tagged fields.
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		switch mediaType(r) {
		case "application/x-www-form-urlencoded":
			if err := r.ParseForm(); err != nil {
				return errors.Join(ErrFailedToParseForm, err)
			}
			return bindValues(v, "form", r.PostForm, ErrFailedToParseForm)
		case "multipart/form-data":
			if err := r.ParseMultipartForm(MaxBodySize); err != nil {
				return errors.Join(ErrFailedToParseForm, err)
			}
			return bindValues(v, "form", r.MultipartForm.Value, ErrFailedToParseForm)
		default:
			return fmt.Errorf("%w: form", ErrBinderNotApplicable)
		}
	}
}

// JSON decodes an application/json body. Unknown fields are rejected.
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if mediaType(r) != "application/json" {
			return fmt.Errorf("%w: json", ErrBinderNotApplicable)
		}
		dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodySize))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
			}
			return errors.Join(ErrFailedToParseJSON, err)
		}
		return nil
	}
}

// Body binds a form or JSON body depending on Content-Type and rejects
// anything else with ErrUnsupportedMediaType.
func Body() func(r *http.Request, v any) error {
	form, js := Form(), JSON()
	return func(r *http.Request, v any) error {
		switch mt := mediaType(r); mt {
		case "application/json":
			return js(r, v)
		case "application/x-www-form-urlencoded", "multipart/form-data":
			return form(r, v)
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mt)
		}
	}
}

// Path binds chi URL parameters into path-tagged fields.
func Path() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		rctx := chi.RouteContext(r.Context())
		if rctx == nil {
			return fmt.Errorf("%w: path", ErrBinderNotApplicable)
		}
		values := make(map[string][]string, len(rctx.URLParams.Keys))
		for i, k := range rctx.URLParams.Keys {
			values[k] = []string{rctx.URLParams.Values[i]}
		}
		return bindValues(v, "path", values, ErrFailedToParsePath)
	}
}

func mediaType(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mt
}

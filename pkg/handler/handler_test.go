package handler_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/trafficmon/pkg/binder"
	"github.com/dmitrymomot/trafficmon/pkg/handler"
)

type pageRequest struct {
	Page  int    `query:"page" validate:"min=1"`
	Order string `query:"order" validate:"omitempty,oneof=asc desc"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) handler.Envelope {
	t.Helper()
	var env handler.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestWrap(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(
		handler.HandlerFunc[pageRequest](func(ctx handler.Context, req pageRequest) handler.Response {
			if req.Page == 99 {
				return handler.JSONError(handler.ErrNotFound)
			}
			if req.Page == 98 {
				return handler.JSONError(errors.New("db exploded"))
			}
			return handler.JSON(req, handler.WithJSONMeta(map[string]any{"page": req.Page}))
		}),
		handler.WithBinders[pageRequest](binder.Query()),
		handler.WithValidator[pageRequest](validator.New()),
	)

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantErr  string
	}{
		{name: "ok", target: "/?page=2&order=asc", wantCode: http.StatusOK},
		{name: "bind error", target: "/?page=x", wantCode: http.StatusBadRequest, wantErr: "bad_request"},
		{name: "validation", target: "/?page=0&order=up", wantCode: http.StatusUnprocessableEntity, wantErr: "validation_error"},
		{name: "http error", target: "/?page=99", wantCode: http.StatusNotFound, wantErr: "not_found"},
		{name: "internal error hidden", target: "/?page=98", wantCode: http.StatusInternalServerError, wantErr: "internal_server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			env := decode(t, rec)
			if tt.wantErr == "" {
				assert.Nil(t, env.Error)
				assert.EqualValues(t, 2, env.Meta["page"])
				return
			}
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantErr, env.Error.Code)
			assert.NotContains(t, env.Error.Message, "db exploded")
		})
	}
}

func TestValidationDetails(t *testing.T) {
	t.Parallel()

	h := handler.Wrap(
		handler.HandlerFunc[pageRequest](func(handler.Context, pageRequest) handler.Response { return handler.Empty() }),
		handler.WithBinders[pageRequest](binder.Query()),
		handler.WithValidator[pageRequest](validator.New()),
	)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?page=0&order=sideways", nil))

	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, []string{"must be at least 1"}, env.Error.Details["Page"])
	assert.Equal(t, []string{"must be one of: asc desc"}, env.Error.Details["Order"])
}

func TestEmptyAndNil(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	handler.Wrap(handler.HandlerFunc[struct{}](func(handler.Context, struct{}) handler.Response {
		return handler.Empty()
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.Wrap(handler.HandlerFunc[struct{}](func(handler.Context, struct{}) handler.Response {
		return nil
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAttachment(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	resp := handler.Attachment("text/csv", "export.csv", io.NopCloser(strings.NewReader("a,b\n")))
	require.NoError(t, resp.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "export.csv")
	assert.Equal(t, "a,b\n", rec.Body.String())
}

func TestHTTPErrorMessage(t *testing.T) {
	t.Parallel()

	err := handler.ErrBadRequest.WithMessage("Please select a bulk action before clicking Apply.")
	rec := httptest.NewRecorder()
	require.NoError(t, handler.JSONError(err).Render(rec, nil))

	env := decode(t, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please select a bulk action before clicking Apply.", env.Error.Message)
}

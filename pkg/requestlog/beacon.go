package requestlog

import (
	"net/http"

	"github.com/dmitrymomot/trafficmon/pkg/binder"
	"github.com/dmitrymomot/trafficmon/pkg/handler"
)

// BeaconHandler accepts beacon posts as form or JSON bodies and replies with
// the Ack: 400 when rejected, 200 otherwise.
func (s *Service) BeaconHandler() http.HandlerFunc {
	return handler.Wrap(
		handler.HandlerFunc[BeaconFields](func(ctx handler.Context, f BeaconFields) handler.Response {
			r := ctx.Request()
			ack := s.HandleInbound(ctx, Inbound{
				Origin:  s.cfg.Classify(r),
				Request: r,
				Fields:  f,
			})
			return handler.JSON(ack, handler.WithJSONStatus(ack.HTTPStatus()))
		}),
		handler.WithBinders[BeaconFields](binder.Body()),
		handler.WithLogger[BeaconFields](s.log),
	)
}

// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a request value already decoded by the
// configured binders and returns a Response that renders itself:
//
//	list := handler.HandlerFunc[ListRequest](func(ctx handler.Context, req ListRequest) handler.Response {
//		rows, total, err := sink.Query(ctx, req.Query())
//		if err != nil {
//			return handler.JSONError(err)
//		}
//		return handler.JSON(rows, handler.WithJSONMeta(map[string]any{"total": total}))
//	})
//
//	r.Get("/logs", handler.Wrap(list,
//		handler.WithBinders[ListRequest](binder.Query()),
//		handler.WithValidator[ListRequest](validate),
//	))
//
// JSON bodies share one envelope: {"data": ..., "meta": ..., "error": {...}}.
// HTTPError and ValidationError map to their status codes; any other error
// becomes a 500 whose message is hidden from the client.
package handler

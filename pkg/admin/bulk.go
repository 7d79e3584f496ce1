package admin

import (
	"fmt"

	"github.com/dmitrymomot/trafficmon/pkg/handler"
	"github.com/dmitrymomot/trafficmon/pkg/logger"
)

// Bulk actions.
const (
	ActionDelete    = "delete"
	ActionDeleteAll = "delete_all"
	ActionExport    = "export"
	ActionExportAll = "export_all"
)

type BulkRequest struct {
	Action string  `form:"bulk_action" json:"action" validate:"omitempty,oneof=delete delete_all export export_all"`
	IDs    []int64 `form:"ids" json:"ids" validate:"dive,gt=0"`
}

func (a *API) bulk(ctx handler.Context, req BulkRequest) handler.Response {
	if req.Action == "" {
		return handler.JSONError(ErrNoAction)
	}
	if (req.Action == ActionDelete || req.Action == ActionExport) && len(req.IDs) == 0 {
		return handler.JSONError(noSelection(req.Action))
	}

	switch req.Action {
	case ActionDelete:
		n, err := a.sink.Delete(ctx, req.IDs...)
		if err != nil {
			a.log.ErrorContext(ctx, "bulk delete failed", logger.Component("admin"), logger.Error(err))
			return handler.JSONError(ErrDeleteFailed)
		}
		a.log.InfoContext(ctx, "request logs deleted", logger.Component("admin"), logger.Count(n))
		return handler.JSON(Message{Message: fmt.Sprintf("Total records deleted: %d", n), Count: n})

	case ActionDeleteAll:
		n, err := a.sink.DeleteAll(ctx)
		if err != nil {
			a.log.ErrorContext(ctx, "delete all failed", logger.Component("admin"), logger.Error(err))
			return handler.JSONError(ErrDeleteAllFailed)
		}
		a.log.InfoContext(ctx, "all request logs deleted", logger.Component("admin"), logger.Count(n))
		return handler.JSON(Message{Message: "All records deleted successfully.", Count: n})

	default:
		var ids []int64
		if req.Action == ActionExport {
			ids = req.IDs
		}
		return a.export(ctx, ids)
	}
}

package admin

import (
	"net/http"

	"github.com/dmitrymomot/trafficmon/pkg/handler"
)

var (
	ErrNoAction = handler.HTTPError{
		Code:    http.StatusBadRequest,
		Key:     "no_action",
		Message: "Please select a bulk action before clicking Apply.",
	}
	ErrNoSelection = handler.HTTPError{Code: http.StatusBadRequest, Key: "no_selection"}
	ErrNoRecords   = handler.HTTPError{
		Code:    http.StatusBadRequest,
		Key:     "no_records",
		Message: "No matching records found.",
	}
	ErrDeleteFailed = handler.HTTPError{
		Code:    http.StatusBadRequest,
		Key:     "delete_failed",
		Message: "Failed to delete records.",
	}
	ErrDeleteAllFailed = handler.HTTPError{
		Code:    http.StatusBadRequest,
		Key:     "delete_all_failed",
		Message: "Failed to delete all records.",
	}
	ErrExportFailed = handler.HTTPError{
		Code:    http.StatusBadRequest,
		Key:     "export_failed",
		Message: "Failed to create the export file.",
	}
	ErrRecordNotFound = handler.ErrNotFound.WithMessage("Record not found.")
	ErrExportNotFound = handler.ErrNotFound.WithMessage("Export not found.")
)

// noSelection carries the original wording naming the requested action.
func noSelection(action string) error {
	return ErrNoSelection.WithMessage("Please select the records you want to %s.", action)
}

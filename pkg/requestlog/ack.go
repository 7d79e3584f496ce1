package requestlog

import "net/http"

// Status is the outcome of one pipeline run.
type Status string

const (
	StatusLogged    Status = "logged"
	StatusDuplicate Status = "duplicate"
	StatusRejected  Status = "rejected"
	StatusIgnored   Status = "ignored"
)

// Ack messages returned to beacon callers.
const (
	MessageLogged    = "request logged"
	MessageDuplicate = "request already logged"
	MessageNoToken   = "missing token"
	MessageBadToken  = "invalid token"
	MessageLocalhost = "localhost request ignored"
	MessageStatic    = "static asset ignored"
	MessageNotHTML   = "non-html request ignored"
	MessageNotLogged = "request type ignored"
)

// Ack is the acknowledgement produced by Service.HandleInbound.
type Ack struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// HTTPStatus is the status code a beacon reply carries for this ack.
func (a Ack) HTTPStatus() int {
	if a.Status == StatusRejected {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

func logged() Ack             { return Ack{Status: StatusLogged, Message: MessageLogged} }
func duplicate() Ack          { return Ack{Status: StatusDuplicate, Message: MessageDuplicate} }
func rejected(msg string) Ack { return Ack{Status: StatusRejected, Message: msg} }
func ignored(msg string) Ack  { return Ack{Status: StatusIgnored, Message: msg} }

package logstore

import "errors"

var (
	ErrInsert        = errors.New("logstore: failed to insert record")
	ErrQuery         = errors.New("logstore: failed to query records")
	ErrDelete        = errors.New("logstore: failed to delete records")
	ErrBufferFull    = errors.New("logstore: async buffer full, record dropped")
	ErrClosed        = errors.New("logstore: sink closed")
	ErrUnknownDriver = errors.New("logstore: unknown storage driver")
)

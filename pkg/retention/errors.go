package retention

import "errors"

var (
	ErrInvalidSchedule = errors.New("retention: invalid schedule")
	ErrPurgeFailed     = errors.New("retention: purge failed")
)

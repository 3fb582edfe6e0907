package playerdb

import "errors"

var (
	ErrPlayerNotFound           = errors.New("player not found")
	ErrNationalityNotFound      = errors.New("nationality not found")
	ErrSubdivisionNotFound      = errors.New("subdivision not found")
	ErrSubdivisionWithoutNation = errors.New("subdivision requires a nationality")
)

package repository

import "errors"

var ErrUnavailable = errors.New("store unavailable")

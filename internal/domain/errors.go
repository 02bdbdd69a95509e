package domain

import "errors"

var (
	ErrRatingNotFound = errors.New("rating not found")
)

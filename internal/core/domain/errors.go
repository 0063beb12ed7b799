package domain

import "errors"

var (
	ErrAlreadyLiked = errors.New("identity has already liked")
	ErrRateLimited  = errors.New("identity exceeded the request budget")
)

func IsAlreadyLikedError(err error) bool {
	return errors.Is(err, ErrAlreadyLiked)
}

func IsRateLimitedError(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

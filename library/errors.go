package library

import "errors"

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrBookUnavailable = errors.New("book is not available")
	ErrNotBorrowed     = errors.New("book is not issued to this member")
)

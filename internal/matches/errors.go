package matches

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("match record not found")
	ErrForbidden    = errors.New("match record owned by another user")
)

var (
	ErrMissingFile           = fmt.Errorf("%w: no resume file provided", ErrInvalidInput)
	ErrMissingJobDescription = fmt.Errorf("%w: no job description provided", ErrInvalidInput)
	ErrFileTooLarge          = fmt.Errorf("%w: resume file too large", ErrInvalidInput)
	ErrInvalidFileName       = fmt.Errorf("%w: invalid resume file name", ErrInvalidInput)
)

package purchase

import "errors"

var (
	// ErrInvalidInput means the supplied name or text cannot be used.
	ErrInvalidInput = errors.New("purchase: invalid input")
	// ErrEmptyInput means the text reduced to nothing after cleanup.
	ErrEmptyInput = errors.New("purchase: empty input")
	// ErrAlreadyExists means a list with the same storage key is present.
	ErrAlreadyExists = errors.New("purchase: list already exists")
	// ErrNotFound means the addressed list has not been created.
	ErrNotFound = errors.New("purchase: list not found")
)

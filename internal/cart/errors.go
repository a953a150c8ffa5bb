package cart

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidIndex = errors.New("cart line index out of range")
	ErrLineNotFound = fmt.Errorf("%w: no line for pizza and size", ErrInvalidIndex)
)

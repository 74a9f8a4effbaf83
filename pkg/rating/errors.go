package rating

import (
	"errors"
	"fmt"
)

// Kind - вид ошибки агрегатора
type Kind int

const (
	InvalidRating Kind = iota + 1
	NotFound
)

func (k Kind) String() string {
	switch k {
	case InvalidRating:
		return "InvalidRating"
	case NotFound:
		return "NotFound"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

var (
	ErrInvalidRating = errors.New("rating must be an integer between 1 and 5")
	ErrNotFound      = errors.New("no active rating")
)

// AggregationError возвращается из Submit и Retract.
// errors.Is(err, ErrInvalidRating) / errors.Is(err, ErrNotFound) определяют вид.
type AggregationError struct {
	Kind    Kind
	StoreID string
	UserID  string
	Value   int
}

func (e *AggregationError) Error() string {
	switch e.Kind {
	case InvalidRating:
		return fmt.Sprintf("%s: got %d", ErrInvalidRating, e.Value)
	case NotFound:
		return fmt.Sprintf("%s for store %s and user %s", ErrNotFound, e.StoreID, e.UserID)
	}
	return "rating: " + e.Kind.String()
}

func (e *AggregationError) Unwrap() error {
	switch e.Kind {
	case InvalidRating:
		return ErrInvalidRating
	case NotFound:
		return ErrNotFound
	}
	return nil
}

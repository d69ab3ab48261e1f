package model

// DataResult is the outcome of a single upstream fetch. It is exactly one of
// Success or Error; callers inspect it with a type switch.
type DataResult[T any] interface {
	isDataResult(T)
}

// Success carries the decoded payload.
type Success[T any] struct {
	Data T
}

// Error carries a human readable failure message. Transport failures,
// non-2xx statuses and decode failures all end up here.
type Error[T any] struct {
	Message string
}

func (Success[T]) isDataResult(T) {}
func (Error[T]) isDataResult(T) {}

var (
	_ DataResult[int] = Success[int]{}
	_ DataResult[int] = Error[int]{}
)

func NewSuccess[T any](data T) DataResult[T] {
	return Success[T]{Data: data}
}

func NewError[T any](message string) DataResult[T] {
	return Error[T]{Message: message}
}

// ResultError is returned by Unwrap for an Error result.
type ResultError struct {
	Message string
}

func (e *ResultError) Error() string {
	return e.Message
}

// Unwrap converts a DataResult into a value and an error.
func Unwrap[T any](result DataResult[T]) (T, error) {
	var zero T
	switch r := result.(type) {
	case Success[T]:
		return r.Data, nil
	case Error[T]:
		return zero, &ResultError{Message: r.Message}
	default:
		return zero, &ResultError{Message: "empty result"}
	}
}

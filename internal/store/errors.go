package store

import "fmt"

// Kind classifies a failed store operation.
type Kind int

const (
	KindValidation Kind = iota
	KindList
	KindCreate
	KindUpdate
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindList:
		return "ListFailed"
	case KindCreate:
		return "CreateFailed"
	case KindUpdate:
		return "UpdateFailed"
	case KindDelete:
		return "DeleteFailed"
	default:
		return "UnknownError"
	}
}

// OpError is the store's error surface. Detail is the user-facing
// message shown by the UI, Err carries the underlying cause.
type OpError struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *OpError) Unwrap() error { return e.Err }

func opErr(kind Kind, detail string, err error) *OpError {
	return &OpError{Kind: kind, Detail: detail, Err: err}
}

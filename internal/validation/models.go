package validation

import "fmt"

type ReasonCode string

const (
	MissingRequired ReasonCode = "MISSING_REQUIRED"
	TypeMismatch    ReasonCode = "TYPE_MISMATCH"
	PatternMismatch ReasonCode = "PATTERN_MISMATCH"
)

// Rejection explains why a record was excluded from persistence. It is a
// per-record outcome, not an error: the pipeline keeps processing.
type Rejection struct {
	Code  ReasonCode
	Field string
	// Expected carries the declared type for TypeMismatch rejections.
	Expected string
}

func (r *Rejection) Reason() string {
	if r.Code == TypeMismatch && r.Expected != "" {
		return fmt.Sprintf("%s(%s, %s)", r.Code, r.Field, r.Expected)
	}
	return fmt.Sprintf("%s(%s)", r.Code, r.Field)
}

func (r *Rejection) String() string {
	return r.Reason()
}

package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is in a state that does not allow the operation.
var ErrConflict = errors.New("resource state conflict")

// ErrInternal indicates an unexpected failure in an underlying dependency.
var ErrInternal = errors.New("internal error")

// Ledger error taxonomy.
var (
	// ErrInvalidAccount is returned when an entry references an account that does not exist,
	// is inactive, or does not accept postings.
	ErrInvalidAccount = errors.New("invalid account")

	// ErrInvalidAmount is returned when an entry is not exactly one of debit or credit,
	// or carries a negative amount.
	ErrInvalidAmount = errors.New("invalid entry amount")

	// ErrUnbalancedTransaction is returned when posting a transaction whose debits differ from its credits.
	ErrUnbalancedTransaction = errors.New("transaction is unbalanced")

	// ErrEmptyTransaction is returned when posting a transaction without entries.
	ErrEmptyTransaction = errors.New("transaction has no entries")

	// ErrMissingAccountMapping is returned when no account can be resolved for a concept or payment method.
	ErrMissingAccountMapping = errors.New("missing account mapping")

	// ErrInvalidTransition is returned for status changes the posting state machine does not allow.
	ErrInvalidTransition = errors.New("invalid transaction status transition")

	// ErrSourceRecordMissing is returned when the business record behind an event cannot be loaded.
	ErrSourceRecordMissing = errors.New("source record missing")
)

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError. A nil cause is allowed.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError builds a 404 AppError that matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}

// Kind tells the event-delivery layer what to do with a failed unit of work.
type Kind int

const (
	// KindRetryable failures are redelivered with backoff.
	KindRetryable Kind = iota
	// KindFatal failures are contract violations; redelivery cannot fix them.
	KindFatal
)

func (k Kind) String() string {
	if k == KindFatal {
		return "fatal"
	}
	return "retryable"
}

// ClassifiedError pins an explicit Kind on an error.
type ClassifiedError struct {
	Kind Kind
	Err  error
}

func (e *ClassifiedError) Error() string { return e.Err.Error() }

func (e *ClassifiedError) Unwrap() error { return e.Err }

// Retryable marks err as safe to redeliver.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Kind: KindRetryable, Err: err}
}

// Fatal marks err as not recoverable by redelivery.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &ClassifiedError{Kind: KindFatal, Err: err}
}

// KindOf classifies err. Explicit classification wins; otherwise ledger invariant
// violations are fatal and everything else (missing mappings, missing source records,
// infrastructure failures) is retryable.
func KindOf(err error) Kind {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	switch {
	case errors.Is(err, ErrUnbalancedTransaction),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrEmptyTransaction),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrValidation):
		return KindFatal
	}
	return KindRetryable
}

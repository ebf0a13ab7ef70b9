package orm

import (
	"errors"
	"fmt"
)

// Sentinel errors for the data-access layer. Wrapper types below attach
// operation context while remaining matchable with errors.Is.
var (
	// ErrConnection indicates a failure at the driver boundary: connect,
	// prepare, bind, or exec.
	ErrConnection = errors.New("connection error")

	// ErrTransaction indicates a begin/commit/rollback failure on a
	// transaction boundary.
	ErrTransaction = errors.New("transaction error")

	// ErrNotFound indicates an expected record is absent.
	ErrNotFound = errors.New("record not found")

	// ErrConfiguration indicates invalid or unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// ConnectionError wraps a driver-boundary failure with the operation that
// produced it.
type ConnectionError struct {
	Operation string
	Err       error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("connection error during %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("connection error during %s", e.Operation)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection || errors.Is(e.Err, target)
}

// NewConnectionError creates a ConnectionError with context.
func NewConnectionError(operation string, err error) *ConnectionError {
	return &ConnectionError{Operation: operation, Err: err}
}

// TransactionError wraps a failure on a transaction boundary.
type TransactionError struct {
	Operation string // begin, commit, or rollback
	Err       error
}

func (e *TransactionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transaction %s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("transaction %s failed", e.Operation)
}

func (e *TransactionError) Unwrap() error { return e.Err }

func (e *TransactionError) Is(target error) bool {
	return target == ErrTransaction || errors.Is(e.Err, target)
}

// NewTransactionError creates a TransactionError with context.
func NewTransactionError(operation string, err error) *TransactionError {
	return &TransactionError{Operation: operation, Err: err}
}

// NotFoundError reports an absent record for a table/key lookup.
type NotFoundError struct {
	Table string
	Key   any
}

func (e *NotFoundError) Error() string {
	if e.Key != nil {
		return fmt.Sprintf("record not found in %s for key %v", e.Table, e.Key)
	}
	return fmt.Sprintf("record not found in %s", e.Table)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a NotFoundError for the given table and key.
func NewNotFoundError(table string, key any) *NotFoundError {
	return &NotFoundError{Table: table, Key: key}
}

// ConfigurationError reports an invalid setting or an unusable environment,
// such as a missing migrations directory or a malformed step count.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Setting, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// NewConfigurationError creates a ConfigurationError for the given setting.
func NewConfigurationError(setting, reason string) *ConfigurationError {
	return &ConfigurationError{Setting: setting, Reason: reason}
}

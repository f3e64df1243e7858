package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/cadence/internal/logger"
)

var (
	// ErrNotFound is returned when a habit (or log) does not exist or does not
	// belong to the requesting owner
	ErrNotFound = errors.New("not found")
	// ErrInvalidConfiguration is returned for habit configurations or inputs the
	// engine refuses, e.g. specific weekdays on a non-weekly habit
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrStoreUnavailable wraps any failure coming from the persistence layer
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Store wraps a persistence error. ErrNotFound passes through untouched so
// callers can still tell a missing habit from a broken store.
func Store(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// Invalid builds an ErrInvalidConfiguration with a formatted reason
func Invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}

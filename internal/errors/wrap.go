package errors

import "fmt"

// Wrap adds context to errors at package boundaries.
// It returns nil if err is nil, allowing for safe inline usage.
//
//	if err := scan(root); err != nil {
//	    return errors.Wrap(err, "scan unit")
//	}
//
// The chain is preserved, so errors.Is() checks against sentinels keep working.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Tag attaches a sentinel to a lower-level cause so that both are visible to errors.Is().
//
//	return errors.Tag(errors.ErrUnreadableLayout, err, "read tasks dir")
func Tag(sentinel, cause error, msg string) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", sentinel, msg)
	}
	return fmt.Errorf("%w: %s: %w", sentinel, msg, cause)
}

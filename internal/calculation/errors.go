package calculation

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedEntity marks an entity whose window, rate or type is outside the valid range.
	ErrMalformedEntity = errors.New("malformed entity")
	// ErrToleranceExceeded marks a solver that hit its iteration cap before converging.
	ErrToleranceExceeded = errors.New("tolerance exceeded")
	// ErrAllocationMismatch marks allocation ratios that do not sum to exactly 100.
	ErrAllocationMismatch = errors.New("allocation ratios must sum to 100")
	// ErrWithdrawalExceedsBalance marks a withdrawal larger than the source's projected balance.
	ErrWithdrawalExceedsBalance = errors.New("withdrawal exceeds balance")
	// ErrUnknownTarget marks a rule that names an entity which cannot receive or supply funds that year.
	ErrUnknownTarget = errors.New("unknown rule target")
	// ErrDegenerateSchedule marks an amortization or payout window of zero or inverted length.
	ErrDegenerateSchedule = errors.New("degenerate schedule")
)

// ProjectionError reports the year and entity at which a projection stopped.
// Year is zero when the household was rejected before the first year.
type ProjectionError struct {
	Year     int
	EntityID string
	Err      error
}

func (e *ProjectionError) Error() string {
	if e.Year == 0 {
		if e.EntityID == "" {
			return fmt.Sprintf("invalid household: %v", e.Err)
		}
		return fmt.Sprintf("invalid household at entity %q: %v", e.EntityID, e.Err)
	}
	if e.EntityID == "" {
		return fmt.Sprintf("projection failed in %d: %v", e.Year, e.Err)
	}
	return fmt.Sprintf("projection failed in %d at entity %q: %v", e.Year, e.EntityID, e.Err)
}

func (e *ProjectionError) Unwrap() error { return e.Err }

// entityError ties a failure to an entity so the driver can report it.
type entityError struct {
	entityID string
	err      error
}

func (e *entityError) Error() string { return fmt.Sprintf("%s: %v", e.entityID, e.err) }
func (e *entityError) Unwrap() error { return e.err }

func atEntity(id string, err error) error {
	if err == nil {
		return nil
	}
	return &entityError{entityID: id, err: err}
}

// failingEntity extracts the entity id attached by atEntity, if any.
func failingEntity(err error) string {
	var ee *entityError
	if errors.As(err, &ee) {
		return ee.entityID
	}
	return ""
}

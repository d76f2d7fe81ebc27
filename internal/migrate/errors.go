package migrate

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/lib/pq"
)

// Error taxonomy of the engine. Row-level errors (unresolved dependency,
// validation, constraint violation) are folded into the run outcome;
// identity conflicts and connection errors halt the run.
var (
	ErrUnresolvedDependency = errors.New("unresolved dependency")
	ErrIdentityConflict     = errors.New("identity conflict")
	ErrValidation           = errors.New("validation failed")
	ErrConstraintViolation  = errors.New("constraint violation")
	ErrConnection           = errors.New("store connection failed")
)

// Validationf builds a row-level validation error for malformed legacy
// data, used by transformers.
func Validationf(format string, v ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, v...))
}

var constraintCheckers = []func(error) bool{pqConstraintViolation}

// RegisterConstraintChecker adds a driver-specific predicate for
// recognizing constraint violations. The sqlite-backed tests register
// theirs through this hook.
func RegisterConstraintChecker(check func(error) bool) {
	constraintCheckers = append(constraintCheckers, check)
}

func pqConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	// Class 23 = integrity constraint violation, class 22 = data
	// exception (bad enum value lands here).
	class := pqErr.Code.Class()
	return class == "23" || class == "22"
}

// classifyStoreError folds raw driver errors into the taxonomy. Anything
// not recognized as a row-level constraint problem or a connection
// failure passes through unchanged.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	for _, check := range constraintCheckers {
		if check(err) {
			return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
		}
	}
	if isConnectionError(err) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return err
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	// Class 08 = connection exception.
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "08" {
		return true
	}
	return false
}

// Package v1 provides the point-of-sale business logic for API version 1.
//
// Error Handling:
// This package defines sentinel errors for every failure class the web layer
// must tell apart. They are wrapped with context using fmt.Errorf("%w") when
// returned from business logic methods. Failures of the backing store are
// wrapped with ErrStorage alongside the driver error so both stay inspectable:
//
//	if err != nil {
//	    return nil, fmt.Errorf("load staff %d: %w: %w", id, ErrStorage, err)
//	}
//	if staff == nil {
//	    return nil, fmt.Errorf("staff %d: %w", id, ErrNotFound)
//	}
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrNotFound):
//	    c.JSON(http.StatusNotFound, ...)
//	case errors.Is(err, logicv1.ErrConflict):
//	    c.JSON(http.StatusConflict, ...)
//	default:
//	    c.JSON(http.StatusInternalServerError, ...)
//	}
package v1

import "errors"

// Sentinel errors for business operations.
// These errors should be wrapped with context using fmt.Errorf("%w") when returned.
var (
	// ErrInvalidCredentials indicates the username or password is wrong.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionNotFound indicates the session id is unknown or expired.
	// HTTP Status: 401 Unauthorized (redirect for browsers)
	ErrSessionNotFound = errors.New("session not found")

	// ErrForbidden indicates the session's role may not perform the operation.
	// HTTP Status: 403 Forbidden
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates a referenced roster position, staff member,
	// service, transaction or expense does not exist.
	// HTTP Status: 404 Not Found
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a duplicate: a staff member already on the roster,
	// a taken username or catalog name.
	// HTTP Status: 409 Conflict
	ErrConflict = errors.New("conflict")

	// ErrInvalidMove indicates a reorder past the roster boundary.
	// HTTP Status: 409 Conflict
	ErrInvalidMove = errors.New("invalid move")

	// ErrInvalidStatus indicates an unknown roster status.
	// HTTP Status: 400 Bad Request
	ErrInvalidStatus = errors.New("invalid roster status")

	// ErrValidation indicates malformed input rejected before any mutation.
	// HTTP Status: 400 Bad Request
	ErrValidation = errors.New("validation failed")

	// ErrStorage indicates the backing store failed. Not retried in-request.
	// HTTP Status: 500 Internal Server Error
	ErrStorage = errors.New("storage unavailable")
)

// isBusinessError reports whether err carries one of the sentinels above
// other than ErrStorage.
func isBusinessError(err error) bool {
	for _, target := range []error{
		ErrInvalidCredentials, ErrSessionNotFound, ErrForbidden, ErrNotFound,
		ErrConflict, ErrInvalidMove, ErrInvalidStatus, ErrValidation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

package facsearch

import "errors"

// ErrElementNotFound is returned when a portal control the workflow requires
// is missing from the current page.
var ErrElementNotFound = errors.New("facsearch: portal element not found")

// ErrDownloadTimeout is returned when pending downloads do not all complete
// within the waiter's poll budget.
var ErrDownloadTimeout = errors.New("facsearch: downloads did not complete in time")

// ErrDriverMissing is returned at startup when no Chrome binary can be found.
var ErrDriverMissing = errors.New("facsearch: browser binary not found")

// ErrInvalidCriteria is returned when search criteria fail validation.
var ErrInvalidCriteria = errors.New("facsearch: invalid search criteria")

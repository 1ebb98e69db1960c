package facsearch

import (
	"fmt"
	"regexp"
	"time"
)

// facDateFormat is the MM/DD/YYYY layout the Clearinghouse date fields expect.
const facDateFormat = "01/02/2006"

// defaultLookbackDays is how far back the release-date window opens when the
// caller does not supply explicit dates.
const defaultLookbackDays = 90

var (
	agencyPrefixRe = regexp.MustCompile(`^[0-9]{2}$`)
	subagencyExtRe = regexp.MustCompile(`^[0-9]$`)
)

// SearchCriteria describes one Clearinghouse search: a CFDA agency prefix
// plus subagency extension, and a release-date window.
type SearchCriteria struct {
	AgencyPrefix       string
	SubagencyExtension string
	DateFrom           time.Time
	DateTo             time.Time
}

// NewSearchCriteria builds criteria with the default date window: from 90
// days before today through yesterday. The "to" date is yesterday rather
// than today so the remote server's clock can never consider it a future
// date, whatever time zone it runs in.
func NewSearchCriteria(agencyPrefix, subagencyExtension string) SearchCriteria {
	today := time.Now()
	return SearchCriteria{
		AgencyPrefix:       agencyPrefix,
		SubagencyExtension: subagencyExtension,
		DateFrom:           today.AddDate(0, 0, -defaultLookbackDays),
		DateTo:             today.AddDate(0, 0, -1),
	}
}

// Validate checks the criteria before any network interaction. An invalid
// agency code must never reach the portal.
func (c SearchCriteria) Validate() error {
	if !agencyPrefixRe.MatchString(c.AgencyPrefix) {
		return fmt.Errorf("%w: agency prefix %q is not a two-digit code", ErrInvalidCriteria, c.AgencyPrefix)
	}
	if !subagencyExtRe.MatchString(c.SubagencyExtension) {
		return fmt.Errorf("%w: subagency extension %q is not a single digit", ErrInvalidCriteria, c.SubagencyExtension)
	}
	if c.DateFrom.IsZero() || c.DateTo.IsZero() {
		return fmt.Errorf("%w: both dates are required", ErrInvalidCriteria)
	}
	if c.DateFrom.After(c.DateTo) {
		return fmt.Errorf("%w: date range %s..%s is inverted",
			ErrInvalidCriteria, c.DateFrom.Format(facDateFormat), c.DateTo.Format(facDateFormat))
	}
	return nil
}

// StartDate returns the date days before end, formatted for the
// Clearinghouse date fields. days=0 yields end itself.
func StartDate(days int, end time.Time) string {
	return FormatFACDate(end.AddDate(0, 0, -days))
}

// FormatFACDate formats a date as MM/DD/YYYY.
func FormatFACDate(d time.Time) string {
	return d.Format(facDateFormat)
}

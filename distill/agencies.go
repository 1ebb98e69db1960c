package distill

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrUnknownAgency is returned when a prefix fails validation or names no
// known federal agency.
var ErrUnknownAgency = errors.New("distill: unknown agency prefix")

var prefixRe = regexp.MustCompile(`^[0-9]{2}$`)

// agencyNames maps CFDA agency prefixes to federal agency names.
var agencyNames = map[string]string{
	"10": "Department of Agriculture",
	"11": "Department of Commerce",
	"12": "Department of Defense",
	"14": "Department of Housing and Urban Development",
	"15": "Department of the Interior",
	"16": "Department of Justice",
	"17": "Department of Labor",
	"19": "Department of State",
	"20": "Department of Transportation",
	"21": "Department of the Treasury",
	"23": "Appalachian Regional Commission",
	"27": "Office of Personnel Management",
	"29": "Commission on Civil Rights",
	"30": "Equal Employment Opportunity Commission",
	"32": "Federal Communications Commission",
	"33": "Federal Maritime Commission",
	"34": "Federal Mediation and Conciliation Service",
	"36": "Federal Trade Commission",
	"39": "General Services Administration",
	"40": "Government Publishing Office",
	"42": "Library of Congress",
	"43": "National Aeronautics and Space Administration",
	"44": "National Credit Union Administration",
	"45": "National Endowment for the Arts and Humanities",
	"46": "National Labor Relations Board",
	"47": "National Science Foundation",
	"57": "Railroad Retirement Board",
	"58": "Securities and Exchange Commission",
	"59": "Small Business Administration",
	"64": "Department of Veterans Affairs",
	"66": "Environmental Protection Agency",
	"68": "National Gallery of Art",
	"70": "Overseas Private Investment Corporation",
	"77": "Nuclear Regulatory Commission",
	"78": "Commodity Futures Trading Commission",
	"81": "Department of Energy",
	"84": "Department of Education",
	"85": "Scholarship and Fellowship Foundations",
	"86": "Pension Benefit Guaranty Corporation",
	"89": "National Archives and Records Administration",
	"90": "Miscellaneous Commissions and Councils",
	"91": "United States Institute of Peace",
	"93": "Department of Health and Human Services",
	"94": "Corporation for National and Community Service",
	"96": "Social Security Administration",
	"97": "Department of Homeland Security",
	"98": "Agency for International Development",
}

// ValidAgencyPrefix checks that prefix is a two-digit code naming a known
// federal agency.
func ValidAgencyPrefix(prefix string) error {
	if !prefixRe.MatchString(prefix) {
		return fmt.Errorf("%w: %q is not a two-digit code", ErrUnknownAgency, prefix)
	}
	if _, ok := agencyNames[prefix]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAgency, prefix)
	}
	return nil
}

// AgencyName returns the federal agency name for prefix.
func AgencyName(prefix string) (string, error) {
	if err := ValidAgencyPrefix(prefix); err != nil {
		return "", err
	}
	return agencyNames[prefix], nil
}

// AgencyPrefixes lists every known prefix. The order is unspecified.
func AgencyPrefixes() []string {
	out := make([]string, 0, len(agencyNames))
	for p := range agencyNames {
		out = append(out, p)
	}
	return out
}

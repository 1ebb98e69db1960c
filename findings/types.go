// Package findings persists audit findings and their review workflow:
// grantees, oversight agencies, grants, findings, and reviewer comments.
package findings

// FindingStatus is the review state of a finding.
type FindingStatus string

const (
	StatusNew        FindingStatus = "new"
	StatusInProgress FindingStatus = "in_progress"
	StatusResolved   FindingStatus = "resolved"
)

// FindingType classifies the severity of a finding per audit terminology.
type FindingType string

const (
	TypeMaterialWeakness      FindingType = "material_weakness"
	TypeSignificantDeficiency FindingType = "significant_deficiency"
)

// Grantee is an organization that receives federal grant money.
type Grantee struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// Agency is a federal agency overseeing one or more grantees.
type Agency struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	GranteeIDs []string `json:"grantee_ids,omitempty"`
	CreatedAt  int64    `json:"created_at"`
}

// Grant is a federal assistance program award, keyed by CFDA number.
type Grant struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	CFDA         int      `json:"cfda"`
	RecipientIDs []string `json:"recipient_ids,omitempty"`
	CreatedAt    int64    `json:"created_at"`
}

// Finding is one audit finding under review.
type Finding struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Number         string        `json:"number"`
	Type           FindingType   `json:"finding_type"`
	Condition      string        `json:"condition"`
	Cause          string        `json:"cause"`
	Criteria       string        `json:"criteria"`
	Effect         string        `json:"effect"`
	Recommendation string        `json:"recommendation"`
	Status         FindingStatus `json:"status"`
	GranteeID      string        `json:"grantee_id,omitempty"`
	AgencyIDs      []string      `json:"agency_ids,omitempty"`
	CreatedAt      int64         `json:"created_at"`
	UpdatedAt      int64         `json:"updated_at"`
}

// Comment is a reviewer note on a finding.
type Comment struct {
	ID        string `json:"id"`
	FindingID string `json:"finding_id"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	Published bool   `json:"is_published"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

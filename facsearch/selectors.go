package facsearch

// SearchURL is the Clearinghouse A-133 search endpoint the session opens.
const SearchURL = "https://harvester.census.gov/facdissem/SearchA133.aspx"

// downloadsURL is Chrome's own download manager page, read by the waiter.
const downloadsURL = "chrome://downloads/"

// selectors collects every remote element identifier the workflow touches.
// The portal's page structure is not a stable contract; when the site
// changes, this table is the only place that needs fixing.
var selectors = struct {
	GeneralInfoAccordion   string
	FederalAwardsAccordion string
	FromDateField          string
	ToDateField            string
	CFDATable              string
	CFDAPrefixSelect       string
	CFDAExtensionField     string
	CFDAContainsCheckbox   string
	AddFilterButton        string
	SearchPanel            string
	SearchButton           string
	AgreeCheckbox          string
	AgreeContinueButton    string
	PagerRow               string
	ResultLinkPrefix       string
}{
	GeneralInfoAccordion:   "ui-id-1",
	FederalAwardsAccordion: "ui-id-5",
	FromDateField:          "MainContent_UcSearchFilters_DateProcessedControl_FromDate",
	ToDateField:            "MainContent_UcSearchFilters_DateProcessedControl_ToDate",
	CFDATable:              "MainContent_UcSearchFilters_CDFASelectionControl_SelectionControlTable",
	CFDAPrefixSelect:       "cfdaPrefix",
	CFDAExtensionField:     "cfdaExt",
	CFDAContainsCheckbox:   "cfdaContains",
	AddFilterButton:        "btnAdd",
	SearchPanel:            "MainContent_UcSearchFilters_Panel4",
	SearchButton:           "MainContent_UcSearchFilters_btnSearch_bottom",
	AgreeCheckbox:          "chkAgree",
	AgreeContinueButton:    "btnIAgree",
	PagerRow:               "tr.GridPager",
	ResultLinkPrefix:       "MainContent_ucA133SearchResults_ResultsGrid_lnkbutton",
}

package facsearch

import (
	"context"
	"fmt"
)

// fillSearchForm drives the Clearinghouse search form to a submitted state.
// Submission is single-shot: no retry, and no check that the remote page
// accepted the criteria before proceeding.
func fillSearchForm(ctx context.Context, p Portal, c SearchCriteria) error {
	// The accordions must be expanded first or their fields are not
	// interactable.
	if err := p.ClickID(ctx, selectors.GeneralInfoAccordion); err != nil {
		return fmt.Errorf("general information accordion: %w", err)
	}

	if err := p.TypeID(ctx, selectors.FromDateField, FormatFACDate(c.DateFrom)); err != nil {
		return fmt.Errorf("from date: %w", err)
	}
	if err := p.TypeID(ctx, selectors.ToDateField, FormatFACDate(c.DateTo)); err != nil {
		return fmt.Errorf("to date: %w", err)
	}

	if err := p.ClickID(ctx, selectors.FederalAwardsAccordion); err != nil {
		return fmt.Errorf("federal awards accordion: %w", err)
	}

	if err := p.SelectValue(ctx, selectors.CFDAPrefixSelect, c.AgencyPrefix); err != nil {
		return fmt.Errorf("cfda prefix: %w", err)
	}
	if err := p.TypeID(ctx, selectors.CFDAExtensionField, c.SubagencyExtension); err != nil {
		return fmt.Errorf("cfda extension: %w", err)
	}

	// Enable "contains" matching before adding the filter. Without it the
	// extension is treated as an exact CFDA number and matches nothing.
	if err := p.ClickID(ctx, selectors.CFDAContainsCheckbox); err != nil {
		return fmt.Errorf("contains checkbox: %w", err)
	}
	if err := p.ClickID(ctx, selectors.AddFilterButton); err != nil {
		return fmt.Errorf("add filter: %w", err)
	}

	if err := p.ClickID(ctx, selectors.SearchButton); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	return nil
}

// passAgreementGate ticks the one-time acknowledgement shown before results
// and continues through to the results grid.
func passAgreementGate(ctx context.Context, p Portal) error {
	if err := p.ClickID(ctx, selectors.AgreeCheckbox); err != nil {
		return fmt.Errorf("acknowledgement checkbox: %w", err)
	}
	if err := p.ClickID(ctx, selectors.AgreeContinueButton); err != nil {
		return fmt.Errorf("continue to results: %w", err)
	}
	return nil
}

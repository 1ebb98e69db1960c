package findings

import "fmt"

const maxNameLen = 250

var validStatuses = map[FindingStatus]bool{
	StatusNew:        true,
	StatusInProgress: true,
	StatusResolved:   true,
}

var validTypes = map[FindingType]bool{
	TypeMaterialWeakness:      true,
	TypeSignificantDeficiency: true,
}

// validateCFDA checks that a CFDA number has exactly five digits.
func validateCFDA(n int) error {
	if n < 10000 || n > 99999 {
		return fmt.Errorf("%w: a CFDA number must have five digits, got %d", ErrInvalidInput, n)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, maxNameLen)
	}
	return nil
}

// validateFinding applies defaults and checks a finding before writes.
func validateFinding(f *Finding) error {
	if err := validateName(f.Name); err != nil {
		return err
	}
	if f.Status == "" {
		f.Status = StatusNew
	}
	if !validStatuses[f.Status] {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, f.Status)
	}
	if f.Type == "" {
		f.Type = TypeMaterialWeakness
	}
	if !validTypes[f.Type] {
		return fmt.Errorf("%w: unknown finding type %q", ErrInvalidInput, f.Type)
	}
	return nil
}

func validateComment(c *Comment) error {
	if c.FindingID == "" {
		return fmt.Errorf("%w: finding_id is required", ErrInvalidInput)
	}
	if c.Author == "" {
		return fmt.Errorf("%w: author is required", ErrInvalidInput)
	}
	if c.Body == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidInput)
	}
	return nil
}

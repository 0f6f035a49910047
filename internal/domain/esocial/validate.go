package esocial

import (
	"errors"
	"fmt"
	"strings"
)

type ViolationCode string

const (
	ViolationInvalidTaxID      ViolationCode = "invalid_tax_id"
	ViolationMissingEnrollment ViolationCode = "missing_enrollment"
	ViolationMissingName       ViolationCode = "missing_name"
	ViolationInvalidPeriod     ViolationCode = "invalid_period"
	ViolationStructural        ViolationCode = "structural"

	ViolationMissingEstablishment ViolationCode = "missing_establishment"
)

type Violation struct {
	Code    ViolationCode `json:"code"`
	Field   string        `json:"field,omitempty"`
	Message string        `json:"message"`
}

func (v Violation) String() string {
	return v.Message
}

// ValidateWorker runs every rule and reports all failures together. An empty
// result means the record is valid.
func ValidateWorker(worker WorkerRecord) []Violation {
	var out []Violation

	taxID := digitsOnly(worker.TaxID)
	if len(taxID) != TaxIDLength {
		out = append(out, Violation{
			Code:    ViolationInvalidTaxID,
			Field:   "taxId",
			Message: fmt.Sprintf("tax ID %q must have %d digits, got %d", worker.TaxID, TaxIDLength, len(taxID)),
		})
	}

	if digitsOnly(worker.Enrollment) == "" {
		out = append(out, Violation{
			Code:    ViolationMissingEnrollment,
			Field:   "enrollment",
			Message: "social security enrollment number is missing",
		})
	}

	if strings.TrimSpace(worker.Name) == "" {
		out = append(out, Violation{
			Code:    ViolationMissingName,
			Field:   "name",
			Message: "worker name is missing",
		})
	}

	return out
}

func ValidatePeriod(p Period) []Violation {
	err := p.Validate()
	if err == nil {
		return nil
	}
	msg := err.Error()
	if errors.Is(err, ErrEmptyPeriod) {
		msg = "period must be set"
	}
	return []Violation{{Code: ViolationInvalidPeriod, Field: "period", Message: msg}}
}

// ValidateEstablishment reports an employer known only by its root, which
// leaves the remuneration event without a 14-digit establishment number.
func ValidateEstablishment(employer EmployerIdentity) []Violation {
	if len(digitsOnly(employer.Registry)) == RegistryLength {
		return nil
	}
	return []Violation{{
		Code:    ViolationMissingEstablishment,
		Field:   "employer.registry",
		Message: "employer establishment registry is missing",
	}}
}

// periodPrecondition turns a period violation into the error that aborts a
// batch. The wrapped error keeps ErrEmptyPeriod and ErrInvalidPeriod matchable.
func periodPrecondition(p Period) error {
	violations := ValidatePeriod(p)
	if len(violations) == 0 {
		return nil
	}
	return &PreconditionError{Field: violations[0].Field, Reason: violations[0].Message, Err: p.Validate()}
}

// ValidationOutcome is computed once and not modified afterwards.
type ValidationOutcome struct {
	valid      bool
	violations []Violation
}

func NewOutcome(groups ...[]Violation) ValidationOutcome {
	var all []Violation
	for _, g := range groups {
		all = append(all, g...)
	}
	return ValidationOutcome{valid: len(all) == 0, violations: all}
}

func (o ValidationOutcome) Valid() bool {
	return o.valid
}

func (o ValidationOutcome) Violations() []Violation {
	out := make([]Violation, len(o.violations))
	copy(out, o.violations)
	return out
}

func (o ValidationOutcome) Messages() []string {
	out := make([]string, 0, len(o.violations))
	for _, v := range o.violations {
		out = append(out, v.Message)
	}
	return out
}

func (o ValidationOutcome) Has(code ViolationCode) bool {
	for _, v := range o.violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

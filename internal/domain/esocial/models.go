package esocial

type EventKind string

type LineKind string

// EmployerIdentity is derived once per batch from the institution's registry number.
type EmployerIdentity struct {
	Root     string `json:"root"`
	Registry string `json:"registry"`
}

// NewEmployerIdentity normalizes a full 14-digit registry number and takes
// its 8-digit root.
func NewEmployerIdentity(registry string) (EmployerIdentity, error) {
	digits, err := NormalizeDigits("employer.registry", registry, true)
	if err != nil {
		return EmployerIdentity{}, &PreconditionError{Field: "employer.registry", Reason: "no digits", Err: ErrMissingEmployer}
	}
	if len(digits) != RegistryLength {
		return EmployerIdentity{}, &PreconditionError{Field: "employer.registry", Reason: "must have 14 digits", Err: ErrMissingEmployer}
	}
	return EmployerIdentity{Root: digits[:RegistryRootLength], Registry: digits}, nil
}

// Normalize re-derives the identity from whichever of Registry or Root is set.
func (e EmployerIdentity) Normalize() (EmployerIdentity, error) {
	if e.Registry != "" {
		return NewEmployerIdentity(e.Registry)
	}
	root := digitsOnly(e.Root)
	if len(root) != RegistryRootLength {
		return EmployerIdentity{}, &PreconditionError{Field: "employer.root", Reason: "must have 8 digits", Err: ErrMissingEmployer}
	}
	return EmployerIdentity{Root: root}, nil
}

type WorkerRecord struct {
	TaxID        string `json:"taxId"`
	Enrollment   string `json:"enrollment"`
	Name         string `json:"name"`
	Registration string `json:"registration"`
	CategoryCode string `json:"categoryCode"`
}

type LedgerLine struct {
	Rubric string   `json:"rubric"`
	Kind   LineKind `json:"kind"`
	Amount Money    `json:"amount"`
}

// FichaSnapshot is the per-worker financial summary for one period.
type FichaSnapshot struct {
	GrossEarnings          Money        `json:"grossEarnings"`
	TotalDeductions        Money        `json:"totalDeductions"`
	NetPay                 Money        `json:"netPay"`
	SocialSecurityBase     Money        `json:"socialSecurityBase"`
	SocialSecurityWithheld Money        `json:"socialSecurityWithheld"`
	IncomeTaxBase          Money        `json:"incomeTaxBase"`
	IncomeTaxWithheld      Money        `json:"incomeTaxWithheld"`
	Dependents             int          `json:"dependents"`
	Lines                  []LedgerLine `json:"lines"`
}

// Entry pairs a worker with the ficha the ledger built for the batch period.
type Entry struct {
	Worker WorkerRecord  `json:"worker"`
	Ficha  FichaSnapshot `json:"ficha"`
}

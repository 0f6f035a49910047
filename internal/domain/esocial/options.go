package esocial

import (
	"fmt"
	"strings"
)

// Options carries the reporting profile shared by every event of a batch.
type Options struct {
	Environment          string
	ProcessCode          string
	ProcessVersion       string
	Retification         string
	RubricTable          string
	FallbackRubric       string
	SocialSecurityRubric string
	IncomeTaxRubric      string
	PaymentDay           int
	PaymentType          string
	LotacaoCode          string
	Workers              int
}

func DefaultOptions() Options {
	return Options{
		Environment:          EnvironmentRestricted,
		ProcessCode:          "1",
		ProcessVersion:       "esocial-1.0",
		Retification:         RetificationOriginal,
		RubricTable:          "FOLHA",
		FallbackRubric:       "1000",
		SocialSecurityRubric: "9201",
		IncomeTaxRubric:      "9203",
		PaymentDay:           5,
		PaymentType:          "1",
		LotacaoCode:          "LOT001",
		Workers:              1,
	}
}

func (o Options) Validate() error {
	if o.Environment != EnvironmentProduction && o.Environment != EnvironmentRestricted {
		return fmt.Errorf("environment must be %s or %s, got %q", EnvironmentProduction, EnvironmentRestricted, o.Environment)
	}
	if o.Retification != RetificationOriginal && o.Retification != RetificationCorrective {
		return fmt.Errorf("retification indicator must be %s or %s, got %q", RetificationOriginal, RetificationCorrective, o.Retification)
	}
	required := []struct{ name, value string }{
		{"process code", o.ProcessCode},
		{"process version", o.ProcessVersion},
		{"rubric table", o.RubricTable},
		{"fallback rubric", o.FallbackRubric},
		{"social security rubric", o.SocialSecurityRubric},
		{"income tax rubric", o.IncomeTaxRubric},
		{"payment type", o.PaymentType},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s is required", field.name)
		}
	}
	if o.PaymentDay < 1 || o.PaymentDay > 31 {
		return fmt.Errorf("payment day must be between 1 and 31, got %d", o.PaymentDay)
	}
	if o.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", o.Workers)
	}
	return nil
}

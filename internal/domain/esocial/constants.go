package esocial

const (
	FamilyRemuneration EventFamily = "S-1200"
	FamilyPayment      EventFamily = "S-1210"
	FamilyClosure      EventFamily = "S-1299"

	KindRemuneration EventKind = "remuneration"
	KindPayment      EventKind = "payment"
	KindClosure      EventKind = "closure"

	LineEarning        LineKind = "earning"
	LineDeduction      LineKind = "deduction"
	LineTaxWithholding LineKind = "tax_withholding"
	LineInformational  LineKind = "informational"

	InscriptionCNPJ = "1"

	EnvironmentProduction = "1"
	EnvironmentRestricted = "2"

	RetificationOriginal   = "1"
	RetificationCorrective = "2"

	FlagYes = "S"
	FlagNo  = "N"

	TaxIDLength        = 11
	RegistryRootLength = 8
	RegistryLength     = 14

	namespaceBase = "http://www.esocial.gov.br/schema/evt/"
	schemaVersion = "v_S_01_02_00"
)

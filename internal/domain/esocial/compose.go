package esocial

import (
	"strings"
	"time"
)

// ComposedEvent is one of *RemunerationEvent, *PaymentEvent or *ClosureEvent.
type ComposedEvent interface {
	Kind() EventKind
	Family() EventFamily
	composed()
}

// Header is the identity block shared by every event of a batch.
type Header struct {
	Employer       EmployerIdentity
	Period         Period
	Retification   string
	Environment    string
	ProcessCode    string
	ProcessVersion string
}

func NewHeader(period Period, employer EmployerIdentity, opts Options) Header {
	return Header{
		Employer:       employer,
		Period:         period,
		Retification:   opts.Retification,
		Environment:    opts.Environment,
		ProcessCode:    opts.ProcessCode,
		ProcessVersion: opts.ProcessVersion,
	}
}

type RemunerationEvent struct {
	Header
	TaxID           string
	CategoryCode    string
	Registration    string
	DemonstrativeID string
	Establishment   string
	LotacaoCode     string
	RubricTable     string
	Items           []RemunerationItem
}

func (*RemunerationEvent) Kind() EventKind     { return KindRemuneration }
func (*RemunerationEvent) Family() EventFamily { return FamilyRemuneration }
func (*RemunerationEvent) composed()           {}

type PaymentEvent struct {
	Header
	TaxID           string
	PaymentDate     time.Time
	PaymentType     string
	ReferencePeriod Period
	DemonstrativeID string
	NetPay          Money
}

func (*PaymentEvent) Kind() EventKind     { return KindPayment }
func (*PaymentEvent) Family() EventFamily { return FamilyPayment }
func (*PaymentEvent) composed()           {}

type ClosureEvent struct {
	Header
	Remuneration       string
	Payment            string
	Production         string
	ContractedServices string
	ComplementaryInfo  string
}

func (*ClosureEvent) Kind() EventKind     { return KindClosure }
func (*ClosureEvent) Family() EventFamily { return FamilyClosure }
func (*ClosureEvent) composed()           {}

const maxDemonstrativeID = 30

// DemonstrativeID is the per-worker code that links the payment event back to
// the remuneration event of the same period. Only ASCII letters and digits of
// the registration are kept, so the cap never splits a character.
func DemonstrativeID(period Period, worker WorkerRecord) string {
	key := alphanumericUpper(worker.Registration)
	if key == "" {
		key = digitsOnly(worker.TaxID)
	}
	id := "FP" + period.Compact() + key
	if len(id) > maxDemonstrativeID {
		id = id[:maxDemonstrativeID]
	}
	return id
}

func alphanumericUpper(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ComposeRemuneration maps a worker's ficha to its remuneration event. The
// detail lines come from the ledger; a worker whose ledger carries no positive
// earnings but who has a positive gross gets one fallback line for the gross,
// so the event is never empty when money moved. Withheld social security and income tax are appended unless
// the ledger already carried their rubrics.
func ComposeRemuneration(h Header, entry Entry, opts Options) *RemunerationEvent {
	ficha := entry.Ficha
	items := FoldRemunerationItems(ficha.Lines)
	if !SumLines(ficha.Lines, LineEarning).IsPositive() && ficha.GrossEarnings.IsPositive() {
		items = append(items, RemunerationItem{Rubric: opts.FallbackRubric, Amount: ficha.GrossEarnings})
	}
	if ficha.SocialSecurityWithheld.IsPositive() && !hasRubric(items, opts.SocialSecurityRubric) {
		items = append(items, RemunerationItem{Rubric: opts.SocialSecurityRubric, Amount: ficha.SocialSecurityWithheld})
	}
	if ficha.IncomeTaxWithheld.IsPositive() && !hasRubric(items, opts.IncomeTaxRubric) {
		items = append(items, RemunerationItem{Rubric: opts.IncomeTaxRubric, Amount: ficha.IncomeTaxWithheld})
	}

	return &RemunerationEvent{
		Header:          h,
		TaxID:           digitsOnly(entry.Worker.TaxID),
		CategoryCode:    strings.TrimSpace(entry.Worker.CategoryCode),
		Registration:    strings.TrimSpace(entry.Worker.Registration),
		DemonstrativeID: DemonstrativeID(h.Period, entry.Worker),
		Establishment:   h.Employer.Registry,
		LotacaoCode:     opts.LotacaoCode,
		RubricTable:     opts.RubricTable,
		Items:           items,
	}
}

func ComposePayment(h Header, entry Entry, opts Options) *PaymentEvent {
	return &PaymentEvent{
		Header:          h,
		TaxID:           digitsOnly(entry.Worker.TaxID),
		PaymentDate:     h.Period.PaymentDate(opts.PaymentDay),
		PaymentType:     opts.PaymentType,
		ReferencePeriod: h.Period,
		DemonstrativeID: DemonstrativeID(h.Period, entry.Worker),
		NetPay:          entry.Ficha.NetPay,
	}
}

// ComposeClosure flags remuneration and payment activity when at least one
// worker was processed. The other categories do not apply to this profile.
func ComposeClosure(h Header, workers int) *ClosureEvent {
	flag := FlagNo
	if workers > 0 {
		flag = FlagYes
	}
	return &ClosureEvent{
		Header:             h,
		Remuneration:       flag,
		Payment:            flag,
		Production:         FlagNo,
		ContractedServices: FlagNo,
		ComplementaryInfo:  FlagNo,
	}
}

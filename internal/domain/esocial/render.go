package esocial

import (
	"encoding/xml"
	"fmt"
	"strings"
)

const (
	rootElement          = "eSocial"
	elementRemuneration  = "evtRemun"
	elementPayment       = "evtPgtos"
	elementClosure       = "evtFechaEvPer"
	elementIdeEvento     = "ideEvento"
	elementIdeEmpregador = "ideEmpregador"
)

type xmlIdeEvento struct {
	IndRetif string `xml:"indRetif,omitempty"`
	PerApur  string `xml:"perApur"`
	TpAmb    string `xml:"tpAmb"`
	ProcEmi  string `xml:"procEmi"`
	VerProc  string `xml:"verProc"`
}

type xmlInscricao struct {
	TpInsc string `xml:"tpInsc"`
	NrInsc string `xml:"nrInsc"`
}

type xmlRemunDoc struct {
	XMLName xml.Name    `xml:"eSocial"`
	Xmlns   string      `xml:"xmlns,attr"`
	Evt     xmlEvtRemun `xml:"evtRemun"`
}

type xmlEvtRemun struct {
	ID             string       `xml:"Id,attr"`
	IdeEvento      xmlIdeEvento `xml:"ideEvento"`
	IdeEmpregador  xmlInscricao `xml:"ideEmpregador"`
	IdeTrabalhador struct {
		CpfTrab string `xml:"cpfTrab"`
	} `xml:"ideTrabalhador"`
	DmDev xmlDmDev `xml:"dmDev"`
}

type xmlDmDev struct {
	IdeDmDev    string `xml:"ideDmDev"`
	CodCateg    string `xml:"codCateg,omitempty"`
	InfoPerApur struct {
		IdeEstabLot xmlIdeEstabLot `xml:"ideEstabLot"`
	} `xml:"infoPerApur"`
}

type xmlIdeEstabLot struct {
	TpInsc       string `xml:"tpInsc"`
	NrInsc       string `xml:"nrInsc"`
	CodLotacao   string `xml:"codLotacao,omitempty"`
	RemunPerApur struct {
		Matricula  string          `xml:"matricula,omitempty"`
		ItensRemun []xmlItensRemun `xml:"itensRemun"`
	} `xml:"remunPerApur"`
}

type xmlItensRemun struct {
	CodRubr    string `xml:"codRubr"`
	IdeTabRubr string `xml:"ideTabRubr"`
	VrRubr     string `xml:"vrRubr"`
}

type xmlPgtosDoc struct {
	XMLName xml.Name    `xml:"eSocial"`
	Xmlns   string      `xml:"xmlns,attr"`
	Evt     xmlEvtPgtos `xml:"evtPgtos"`
}

type xmlEvtPgtos struct {
	ID            string       `xml:"Id,attr"`
	IdeEvento     xmlIdeEvento `xml:"ideEvento"`
	IdeEmpregador xmlInscricao `xml:"ideEmpregador"`
	IdeBenef      struct {
		CpfBenef string      `xml:"cpfBenef"`
		InfoPgto xmlInfoPgto `xml:"infoPgto"`
	} `xml:"ideBenef"`
}

type xmlInfoPgto struct {
	DtPgto   string `xml:"dtPgto"`
	TpPgto   string `xml:"tpPgto"`
	PerRef   string `xml:"perRef"`
	IdeDmDev string `xml:"ideDmDev"`
	VrLiq    string `xml:"vrLiq"`
}

type xmlFechaDoc struct {
	XMLName xml.Name         `xml:"eSocial"`
	Xmlns   string           `xml:"xmlns,attr"`
	Evt     xmlEvtFechaEvPer `xml:"evtFechaEvPer"`
}

type xmlEvtFechaEvPer struct {
	ID            string       `xml:"Id,attr"`
	IdeEvento     xmlIdeEvento `xml:"ideEvento"`
	IdeEmpregador xmlInscricao `xml:"ideEmpregador"`
	InfoFech      struct {
		EvtRemun        string `xml:"evtRemun"`
		EvtPgtos        string `xml:"evtPgtos"`
		EvtComProd      string `xml:"evtComProd"`
		EvtContratAvNP  string `xml:"evtContratAvNP"`
		EvtInfoComplPer string `xml:"evtInfoComplPer"`
	} `xml:"infoFech"`
}

func namespace(element string) string {
	return namespaceBase + element + "/" + schemaVersion
}

func ideEvento(h Header) xmlIdeEvento {
	return xmlIdeEvento{
		IndRetif: h.Retification,
		PerApur:  h.Period.String(),
		TpAmb:    h.Environment,
		ProcEmi:  h.ProcessCode,
		VerProc:  h.ProcessVersion,
	}
}

func ideEmpregador(h Header) xmlInscricao {
	return xmlInscricao{TpInsc: InscriptionCNPJ, NrInsc: h.Employer.Root}
}

// Render produces the document for one composed event. The same event and ID
// always render to the same text.
func Render(event ComposedEvent, id EventID) (string, error) {
	var doc any
	switch e := event.(type) {
	case *RemunerationEvent:
		doc = remunerationDoc(e, id)
	case *PaymentEvent:
		doc = paymentDoc(e, id)
	case *ClosureEvent:
		doc = closureDoc(e, id)
	default:
		return "", fmt.Errorf("render: unsupported event %T", event)
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", event.Family(), err)
	}
	var b strings.Builder
	b.Grow(len(xml.Header) + len(body))
	b.WriteString(xml.Header)
	b.Write(body)
	return b.String(), nil
}

func remunerationDoc(e *RemunerationEvent, id EventID) xmlRemunDoc {
	doc := xmlRemunDoc{Xmlns: namespace(elementRemuneration)}
	evt := &doc.Evt
	evt.ID = id.String()
	evt.IdeEvento = ideEvento(e.Header)
	evt.IdeEmpregador = ideEmpregador(e.Header)
	evt.IdeTrabalhador.CpfTrab = e.TaxID

	evt.DmDev.IdeDmDev = e.DemonstrativeID
	evt.DmDev.CodCateg = e.CategoryCode
	lot := &evt.DmDev.InfoPerApur.IdeEstabLot
	lot.TpInsc = InscriptionCNPJ
	lot.NrInsc = e.Establishment
	if lot.NrInsc == "" {
		lot.NrInsc = e.Employer.Root
	}
	lot.CodLotacao = e.LotacaoCode
	lot.RemunPerApur.Matricula = e.Registration
	for _, item := range e.Items {
		if item.Amount.IsZero() {
			continue
		}
		lot.RemunPerApur.ItensRemun = append(lot.RemunPerApur.ItensRemun, xmlItensRemun{
			CodRubr:    item.Rubric,
			IdeTabRubr: e.RubricTable,
			VrRubr:     item.Amount.String(),
		})
	}
	return doc
}

func paymentDoc(e *PaymentEvent, id EventID) xmlPgtosDoc {
	doc := xmlPgtosDoc{Xmlns: namespace(elementPayment)}
	evt := &doc.Evt
	evt.ID = id.String()
	evt.IdeEvento = ideEvento(e.Header)
	evt.IdeEmpregador = ideEmpregador(e.Header)
	evt.IdeBenef.CpfBenef = e.TaxID
	evt.IdeBenef.InfoPgto = xmlInfoPgto{
		DtPgto:   FormatDate(e.PaymentDate),
		TpPgto:   e.PaymentType,
		PerRef:   e.ReferencePeriod.String(),
		IdeDmDev: e.DemonstrativeID,
		VrLiq:    e.NetPay.String(),
	}
	return doc
}

func closureDoc(e *ClosureEvent, id EventID) xmlFechaDoc {
	doc := xmlFechaDoc{Xmlns: namespace(elementClosure)}
	evt := &doc.Evt
	evt.ID = id.String()
	evt.IdeEvento = ideEvento(e.Header)
	evt.IdeEmpregador = ideEmpregador(e.Header)
	evt.InfoFech.EvtRemun = e.Remuneration
	evt.InfoFech.EvtPgtos = e.Payment
	evt.InfoFech.EvtComProd = e.Production
	evt.InfoFech.EvtContratAvNP = e.ContractedServices
	evt.InfoFech.EvtInfoComplPer = e.ComplementaryInfo
	return doc
}

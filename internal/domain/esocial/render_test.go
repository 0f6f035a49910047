package esocial

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderClosureExact(t *testing.T) {
	h := testHeader(t)
	text, err := Render(ComposeClosure(h, 0), NextEventID(FamilyClosure, h.Employer.Root, 1))
	require.NoError(t, err)

	want := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<eSocial xmlns="http://www.esocial.gov.br/schema/evt/evtFechaEvPer/v_S_01_02_00">` +
		`<evtFechaEvPer Id="ID1123456780000001299000000000000001">` +
		`<ideEvento><indRetif>1</indRetif><perApur>03/2025</perApur><tpAmb>2</tpAmb><procEmi>1</procEmi><verProc>esocial-1.0</verProc></ideEvento>` +
		`<ideEmpregador><tpInsc>1</tpInsc><nrInsc>12345678</nrInsc></ideEmpregador>` +
		`<infoFech><evtRemun>N</evtRemun><evtPgtos>N</evtPgtos><evtComProd>N</evtComProd><evtContratAvNP>N</evtContratAvNP><evtInfoComplPer>N</evtInfoComplPer></infoFech>` +
		`</evtFechaEvPer></eSocial>`
	assert.Equal(t, want, text)
}

func TestRenderRemunerationElementOrder(t *testing.T) {
	h := testHeader(t)
	ev := ComposeRemuneration(h, scenarioEntry(), DefaultOptions())
	text, err := Render(ev, NextEventID(ev.Family(), h.Employer.Root, 1))
	require.NoError(t, err)

	ordered := []string{
		`<evtRemun Id="ID1123456780000001200000000000000001">`,
		`<ideEvento>`,
		`<perApur>03/2025</perApur>`,
		`<ideEmpregador><tpInsc>1</tpInsc><nrInsc>12345678</nrInsc></ideEmpregador>`,
		`<ideTrabalhador><cpfTrab>12345678900</cpfTrab></ideTrabalhador>`,
		`<dmDev><ideDmDev>FP202503MAT001</ideDmDev><codCateg>101</codCateg>`,
		`<ideEstabLot><tpInsc>1</tpInsc><nrInsc>12345678000195</nrInsc><codLotacao>LOT001</codLotacao>`,
		`<remunPerApur><matricula>MAT001</matricula>`,
		`<itensRemun><codRubr>1000</codRubr><ideTabRubr>FOLHA</ideTabRubr><vrRubr>5000.00</vrRubr></itensRemun>`,
		`<itensRemun><codRubr>9201</codRubr><ideTabRubr>FOLHA</ideTabRubr><vrRubr>500.00</vrRubr></itensRemun>`,
	}
	last := -1
	for _, fragment := range ordered {
		idx := strings.Index(text, fragment)
		require.GreaterOrEqual(t, idx, 0, "missing %s in %s", fragment, text)
		assert.Greater(t, idx, last, "%s out of order", fragment)
		last = idx
	}
	assert.Equal(t, 2, strings.Count(text, "<itensRemun>"))
}

func TestRenderOmitsEmptyOptionalFields(t *testing.T) {
	h := testHeader(t)
	entry := scenarioEntry()
	entry.Worker.CategoryCode = ""
	entry.Worker.Registration = ""
	opts := DefaultOptions()
	opts.LotacaoCode = ""
	ev := ComposeRemuneration(h, entry, opts)

	text, err := Render(ev, NextEventID(ev.Family(), h.Employer.Root, 1))
	require.NoError(t, err)
	assert.NotContains(t, text, "<codCateg>")
	assert.NotContains(t, text, "<matricula>")
	assert.NotContains(t, text, "<codLotacao>")
}

func TestRenderPayment(t *testing.T) {
	h := testHeader(t)
	ev := ComposePayment(h, scenarioEntry(), DefaultOptions())
	text, err := Render(ev, NextEventID(ev.Family(), h.Employer.Root, 2))
	require.NoError(t, err)

	assert.Contains(t, text, `<eSocial xmlns="http://www.esocial.gov.br/schema/evt/evtPgtos/v_S_01_02_00">`)
	assert.Contains(t, text, `<evtPgtos Id="ID1123456780000001210000000000000002">`)
	assert.Contains(t, text, `<ideBenef><cpfBenef>12345678900</cpfBenef><infoPgto><dtPgto>2025-03-05</dtPgto><tpPgto>1</tpPgto><perRef>03/2025</perRef><ideDmDev>FP202503MAT001</ideDmDev><vrLiq>4500.00</vrLiq></infoPgto></ideBenef>`)
}

func TestRenderIsDeterministicAndPure(t *testing.T) {
	h := testHeader(t)
	ev := ComposeRemuneration(h, scenarioEntry(), DefaultOptions())
	before := *ev
	before.Items = append([]RemunerationItem(nil), ev.Items...)
	id := NextEventID(ev.Family(), h.Employer.Root, 9)

	first, err := Render(ev, id)
	require.NoError(t, err)
	second, err := Render(ev, id)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, *ev)
}

func TestRenderEscapesText(t *testing.T) {
	h := testHeader(t)
	h.ProcessVersion = "folha<&>"
	text, err := Render(ComposeClosure(h, 1), NextEventID(FamilyClosure, h.Employer.Root, 1))
	require.NoError(t, err)
	assert.Contains(t, text, "<verProc>folha&lt;&amp;&gt;</verProc>")
	ok, vs := BasicStructuralCheck(text)
	assert.True(t, ok, "%v", vs)
}

func TestRenderedAmountsRoundTrip(t *testing.T) {
	h := testHeader(t)
	entry := scenarioEntry()
	entry.Ficha.NetPay = MustMoney("1234567.05")
	ev := ComposePayment(h, entry, DefaultOptions())
	text, err := Render(ev, NextEventID(ev.Family(), h.Employer.Root, 1))
	require.NoError(t, err)

	start := strings.Index(text, "<vrLiq>") + len("<vrLiq>")
	end := strings.Index(text, "</vrLiq>")
	parsed, err := MoneyFromString(text[start:end])
	require.NoError(t, err)
	assert.True(t, parsed.Equal(entry.Ficha.NetPay))
}

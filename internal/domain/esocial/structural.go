package esocial

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// BasicStructuralCheck is a lightweight self-check of rendered text: tags must
// balance and the root, event, ideEvento and ideEmpregador elements must be
// present. It does not replace ValidateWorker.
func BasicStructuralCheck(text string) (bool, []Violation) {
	var out []Violation
	add := func(format string, args ...any) {
		out = append(out, Violation{Code: ViolationStructural, Message: fmt.Sprintf(format, args...)})
	}

	dec := xml.NewDecoder(strings.NewReader(text))
	var (
		stack        []string
		roots        int
		eventName    string
		eventHasID   bool
		hasIdeEvento bool
		hasIdeEmpreg bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			add("malformed document: %v", err)
			return false, out
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch len(stack) {
			case 0:
				roots++
				if t.Name.Local != rootElement {
					add("root element is %q, expected %q", t.Name.Local, rootElement)
				}
			case 1:
				if eventName == "" {
					eventName = t.Name.Local
					for _, attr := range t.Attr {
						if attr.Name.Local == "Id" && strings.TrimSpace(attr.Value) != "" {
							eventHasID = true
						}
					}
				}
			case 2:
				switch t.Name.Local {
				case elementIdeEvento:
					hasIdeEvento = true
				case elementIdeEmpregador:
					hasIdeEmpreg = true
				}
			}
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			if len(stack) == 0 || stack[len(stack)-1] != t.Name.Local {
				add("unbalanced closing tag %q", t.Name.Local)
				return false, out
			}
			stack = stack[:len(stack)-1]
		}
	}

	if len(stack) > 0 {
		add("unclosed element %q", stack[len(stack)-1])
	}
	if roots == 0 {
		add("document has no root element")
	} else if roots > 1 {
		add("document has %d root elements", roots)
	}
	if roots > 0 && eventName == "" {
		add("event element is missing")
	}
	if eventName != "" && !eventHasID {
		add("event element %q has no Id attribute", eventName)
	}
	if roots > 0 && !hasIdeEvento {
		add("%s is missing", elementIdeEvento)
	}
	if roots > 0 && !hasIdeEmpreg {
		add("%s is missing", elementIdeEmpregador)
	}
	return len(out) == 0, out
}

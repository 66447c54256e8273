package config

import (
	"fmt"
	"strings"
)

// Validate drops every invalid field from p and returns one error per
// dropped field. The remaining fields are safe to apply.
func (p *Partial) Validate() []error {
	var errs []error

	if p.Color != nil {
		switch *p.Color {
		case ColorAuto, ColorOn, ColorOff:
		default:
			errs = append(errs, fmt.Errorf("invalid %s %q: want auto, on or off", FieldColor, *p.Color))
			p.Color = nil
		}
	}

	if p.Style != nil && strings.TrimSpace(*p.Style) == "" {
		errs = append(errs, fmt.Errorf("invalid %s: empty palette name", FieldStyle))
		p.Style = nil
	}

	if p.Indent != nil && *p.Indent < 1 {
		errs = append(errs, fmt.Errorf("invalid %s %d: want a positive integer", FieldIndent, *p.Indent))
		p.Indent = nil
	}

	return errs
}

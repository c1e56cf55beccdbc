// Package style derives inline presentation from checked state. Everything
// here is a pure function of (option value, checked); no state is kept, and
// the applier recomputes the full style set on every reconciliation pass.
package style

// Palette is one color scheme for a label.
type Palette struct {
	Background string `yaml:"background"`
	Border     string `yaml:"border"`
	Text       string `yaml:"text"`
}

// Sheet maps option values to their checked palettes, on top of a shared
// neutral base. Values without an entry fall back to Fallback, so an
// unexpected option still renders a visible selected state.
type Sheet struct {
	Base     Palette            `yaml:"base"`
	Checked  map[string]Palette `yaml:"checked"`
	Fallback Palette            `yaml:"fallback"`
}

// Default returns the dashboard palette: affirmative options get the success
// accent, negative ones the warning accent, over the dark surface scheme.
func Default() Sheet {
	return Sheet{
		Base: Palette{
			Background: "#1A2332",
			Border:     "#2D3748",
			Text:       "#E2E8F0",
		},
		Checked: map[string]Palette{
			"yes": {Background: "#2DBE6C", Border: "#2DBE6C", Text: "#FFFFFF"},
			"no":  {Background: "#FFB020", Border: "#FFB020", Text: "#1A2332"},
		},
		Fallback: Palette{Background: "#2196F3", Border: "#2196F3", Text: "#FFFFFF"},
	}
}

// Label returns the full inline style for an option label. The base style is
// identical across options; a checked option overlays its value palette plus
// the shared emphasis attributes (weight, lift, shadow).
func (s Sheet) Label(value string, checked bool) map[string]string {
	props := map[string]string{
		"display":          "inline-block",
		"padding":          "6px 18px",
		"margin":           "0 6px",
		"border-radius":    "9999px",
		"cursor":           "pointer",
		"font-size":        "0.9rem",
		"font-weight":      "500",
		"text-align":       "center",
		"transition":       "all 0.2s ease",
		"user-select":      "none",
		"background-color": s.Base.Background,
		"border":           "1px solid " + s.Base.Border,
		"color":            s.Base.Text,
		"transform":        "none",
		"box-shadow":       "none",
	}
	if checked {
		p, ok := s.Checked[value]
		if !ok {
			p = s.Fallback
		}
		props["background-color"] = p.Background
		props["border"] = "1px solid " + p.Border
		props["color"] = p.Text
		props["font-weight"] = "700"
		props["transform"] = "translateY(-1px)"
		props["box-shadow"] = "0 4px 10px rgba(0,0,0,0.35)"
	}
	return props
}

// HiddenControl returns the inline style that makes a native control visually
// inert: zero size, transparent, out of layout flow, non-interactive. Checked
// state and group membership are untouched; hiding is purely visual.
func HiddenControl() map[string]string {
	return map[string]string{
		"position":       "absolute",
		"width":          "0",
		"height":         "0",
		"margin":         "0",
		"padding":        "0",
		"opacity":        "0",
		"pointer-events": "none",
	}
}

// Package measure supplies rendered heights of print form blocks.
//
// Pagination never computes heights itself. A Measurer is the oracle which
// reports them, the default one reads heights recorded in the document:
// data-height attributes written by a browser measuring pass, inline styles
// and author stylesheet rules.
package measure

import (
	"fmt"
	"math"
	"strings"

	"github.com/gompdf/printform/internal/parser/css"
	"github.com/gompdf/printform/internal/parser/html"
)

// AttrHeight carries a pre-measured height, in px.
const AttrHeight = "data-height"

// Measurer reports the rendered height of a document node in px.
type Measurer interface {
	Height(n *html.Node) (float64, error)
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(n *html.Node) (float64, error)

// Height implements Measurer.
func (f MeasureFunc) Height(n *html.Node) (float64, error) {
	return f(n)
}

// StyleMeasurer derives heights from markup: data-height attribute, inline
// height, then stylesheet height, otherwise the sum of the element children.
type StyleMeasurer struct {
	Sheet *css.Stylesheet
}

// NewStyleMeasurer collects all <style> blocks below root into one stylesheet.
func NewStyleMeasurer(root *html.Node) *StyleMeasurer {
	sheet := &css.Stylesheet{}
	parser := css.NewParser()
	for _, st := range root.FindAll(html.ByTag("style")) {
		if s, err := parser.ParseString(st.Text()); err == nil {
			sheet.Merge(s)
		}
	}
	return &StyleMeasurer{Sheet: sheet}
}

// Height implements Measurer.
func (m *StyleMeasurer) Height(n *html.Node) (float64, error) {
	if n == nil || !n.IsElement() {
		return 0, nil
	}

	if v, ok := n.Lookup(AttrHeight); ok && strings.TrimSpace(v) != "" {
		return explicit(n, AttrHeight, v)
	}
	if v, ok := css.Value(css.ParseInline(n.AttrVal("style")), "height"); ok {
		if h, ok, err := css.ParseLength(v); err != nil || ok {
			return h, wrap(n, "style", err)
		}
	}
	if m.Sheet != nil {
		if v, ok := m.Sheet.Lookup(n, "height"); ok {
			if h, ok, err := css.ParseLength(v); err != nil || ok {
				return h, wrap(n, "stylesheet", err)
			}
		}
	}

	var total float64
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		h, err := m.Height(c)
		if err != nil {
			return 0, err
		}
		total += h
	}
	return total, nil
}

func explicit(n *html.Node, source, v string) (float64, error) {
	h, ok, err := css.ParseLength(v)
	if err != nil {
		return 0, wrap(n, source, err)
	}
	if !ok {
		return 0, wrap(n, source, fmt.Errorf("%w: %q is not an absolute length", css.ErrBadLength, v))
	}
	return h, nil
}

func wrap(n *html.Node, source string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("unable to measure <%s class=%q> from %s: %w", n.Data, n.AttrVal("class"), source, err)
}

// Round2 rounds a height to 0.01 px, the precision heights are compared at.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

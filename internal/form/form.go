// Package form discovers print forms in a parsed document and turns each one
// into a measured section registry the page builder can work on.
package form

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gompdf/printform/internal/config"
	"github.com/gompdf/printform/internal/measure"
	"github.com/gompdf/printform/internal/pagination"
	"github.com/gompdf/printform/internal/parser/html"
)

// Class names recognized in source documents.
const (
	ClassPrintForm      = "printform"
	ClassRowItem        = "prowitem"
	ClassPageBreak      = "tb_page_break_before"
	AttrPageBreakBefore = "data-page-break-before"
)

// ErrNoForms is returned when a document holds no print form.
var ErrNoForms = errors.New("no print form found")

// SectionClass returns the class name marking the section in source documents.
func SectionClass(kind pagination.SectionKind) string {
	switch kind {
	case pagination.SectionHeader:
		return "pheader"
	case pagination.SectionDocInfo:
		return "pdocinfo"
	case pagination.SectionRowHeader:
		return "prowheader"
	case pagination.SectionFooter:
		return "pfooter"
	case pagination.SectionFooterLogo:
		return "pfooter_logo"
	}
	return ""
}

// Form is a single print form with its resolved policy, measured registry and
// handles to the source nodes.
type Form struct {
	Node     *html.Node
	Config   config.Config
	Registry *pagination.Registry

	sections [pagination.SectionCount]*html.Node
	items    []*html.Node
}

// Section returns the source node of a section or nil when it is absent.
func (f *Form) Section(kind pagination.SectionKind) *html.Node {
	return f.sections[kind]
}

// Item returns the source node of row item i.
func (f *Form) Item(i int) *html.Node {
	if i < 0 || i >= len(f.items) {
		return nil
	}
	return f.items[i]
}

// ItemCount returns number of row items in the form.
func (f *Form) ItemCount() int {
	return len(f.items)
}

// Find returns every print form element of the document in document order.
func Find(doc *html.Document) []*html.Node {
	if doc == nil {
		return nil
	}
	return doc.Root.FindAll(html.ByClass(ClassPrintForm))
}

// Build resolves the form policy from its attributes on top of base, locates
// sections and row items and measures them.
func Build(node *html.Node, base config.Config, m measure.Measurer, log *zap.Logger) (*Form, error) {
	if node == nil {
		return nil, ErrNoForms
	}
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = measure.NewStyleMeasurer(root(node))
	}

	f := &Form{
		Node:     node,
		Config:   config.Resolve(node, base),
		Registry: &pagination.Registry{},
	}
	if err := f.Config.Validate(); err != nil {
		return nil, err
	}

	for k := range pagination.SectionCount {
		kind := pagination.SectionKind(k)
		n := node.FindFirst(html.ByClass(SectionClass(kind)))
		if n == nil {
			log.Warn("Section not found, skipping", zap.Stringer("section", kind))
			continue
		}
		h, err := m.Height(n)
		if err != nil {
			return nil, fmt.Errorf("unable to measure %s: %w", kind, err)
		}
		f.sections[kind] = n
		f.Registry.SetSection(kind, measure.Round2(h))
	}

	f.items = node.FindAll(html.ByClass(ClassRowItem))
	f.Registry.Items = make([]pagination.RowItem, 0, len(f.items))
	for i, n := range f.items {
		h, err := m.Height(n)
		if err != nil {
			return nil, fmt.Errorf("unable to measure row item %d: %w", i, err)
		}
		f.Registry.Items = append(f.Registry.Items, pagination.RowItem{
			Height:           measure.Round2(h),
			ForceBreakBefore: forcedBreak(n),
		})
	}

	log.Debug("Print form measured",
		zap.String("id", node.ID()),
		zap.Int("items", len(f.items)),
		zap.Float64("page_height", f.Config.PageHeight))
	return f, nil
}

// Paginate runs the page builder over the form with its resolved policy.
func (f *Form) Paginate(log *zap.Logger) (pagination.Stream, error) {
	e := pagination.NewEngine(log)
	e.SetConfig(f.Config)
	return e.Paginate(f.Registry)
}

func forcedBreak(n *html.Node) bool {
	if n.HasClass(ClassPageBreak) {
		return true
	}
	v, ok := n.Lookup(AttrPageBreakBefore)
	return ok && config.ParseYN(v)
}

func root(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

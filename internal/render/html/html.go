// Package html materializes page element streams as paginated HTML, replacing
// each source print form with its formatted copy.
package html

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/gompdf/printform/internal/form"
	"github.com/gompdf/printform/internal/pagination"
	dom "github.com/gompdf/printform/internal/parser/html"
)

// Class names of generated markup.
const (
	ClassFormatter    = "printform_formatter"
	ClassDummyRowItem = "dummy_row_item"
	ClassDummyRow     = "dummy_row"
	ClassSpacer       = "pfooter_spacer"
	ClassPaperWidth   = "paper_width"
	ClassPageBreak    = "div_page_break_before"

	// ProcessedSuffix marks nodes already handled so a second pass skips them
	ProcessedSuffix = "_processed"
)

const defaultDummyRow = `<tr style='height:%spx;'><td style="border:0px solid black;"></td></tr>`

// Renderer renders streams into document trees.
type Renderer struct {
	log    *zap.Logger
	parser *dom.Parser
}

// NewRenderer creates a new HTML renderer.
func NewRenderer(log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{log: log, parser: dom.NewParser()}
}

// Format builds the formatter container for the form following the stream.
// The source form is left untouched.
func (r *Renderer) Format(f *form.Form, s pagination.Stream) (*dom.Node, error) {
	out := dom.NewElement("div", dom.Attribute("class", ClassFormatter+ProcessedSuffix))

	for _, e := range s {
		switch e.Kind {
		case pagination.KindSection:
			src := f.Section(e.Section)
			if src == nil {
				continue
			}
			out.AppendChild(processed(src, form.SectionClass(e.Section)))
		case pagination.KindRowItem:
			src := f.Item(e.Index)
			if src == nil {
				return nil, fmt.Errorf("row item %d is out of range", e.Index)
			}
			out.AppendChild(processed(src, form.ClassRowItem))
		case pagination.KindFiller:
			for range e.Count {
				table, err := r.dummyTable(e, f.Config.PageWidth)
				if err != nil {
					return nil, err
				}
				out.AppendChild(table)
			}
		case pagination.KindSpacer:
			out.AppendChild(Spacer(e.Height))
		case pagination.KindPageBreak:
			out.AppendChild(PageBreak())
		}
	}
	return out, nil
}

// Apply formats the form and puts the result in place of the source node,
// which is removed from the document.
func (r *Renderer) Apply(f *form.Form, s pagination.Stream) (*dom.Node, error) {
	out, err := r.Format(f, s)
	if err != nil {
		return nil, err
	}
	parent := f.Node.Parent
	if parent == nil {
		return nil, fmt.Errorf("print form is detached from the document")
	}
	parent.InsertBefore(out, f.Node)
	f.Node.Remove()

	r.log.Debug("Print form rendered",
		zap.String("id", f.Node.ID()),
		zap.Int("elements", len(s)),
		zap.Int("pages", s.PageCount()))
	return out, nil
}

// SeparateFrom puts a hard break in front of node so consecutive documents
// start on their own page.
func SeparateFrom(node *dom.Node) {
	if node == nil || node.Parent == nil {
		return
	}
	node.Parent.InsertBefore(PageBreak(), node)
}

func (r *Renderer) dummyTable(e pagination.Element, width float64) (*dom.Node, error) {
	class := ClassDummyRowItem
	content := e.Content
	if e.Filler == pagination.FillerDummyRow {
		class, content = ClassDummyRow, ""
	}
	if content == "" {
		content = fmt.Sprintf(defaultDummyRow, px(e.Height))
	}

	table := dom.NewElement("table",
		dom.Attribute("class", class),
		dom.Attribute("width", px(width)+"px"),
		dom.Attribute("cellspacing", "0"),
		dom.Attribute("cellpadding", "0"),
	)
	rows, err := r.parser.ParseFragment(content, "table")
	if err != nil {
		return nil, fmt.Errorf("unable to parse dummy row content: %w", err)
	}
	for _, n := range rows {
		table.AppendChild(n)
	}
	return table, nil
}

// Spacer returns an invisible block of the given height.
func Spacer(height float64) *dom.Node {
	return dom.NewElement("div",
		dom.Attribute("class", ClassSpacer+" "+ClassPaperWidth),
		dom.Attribute("style", "height:"+px(height)+"px;"),
	)
}

// PageBreak returns a zero height block forcing a new printed page.
func PageBreak() *dom.Node {
	return dom.NewElement("div",
		dom.Attribute("class", ClassPageBreak),
		dom.Attribute("style", "page-break-before: always; height: 0px;"),
	)
}

func processed(src *dom.Node, class string) *dom.Node {
	n := src.Clone()
	n.ReplaceClass(class, class+ProcessedSuffix)
	return n
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package pagination

import (
	"fmt"
	"strings"
)

// Kind is the type of a page element instruction.
type Kind int

const (
	KindSection Kind = iota
	KindRowItem
	KindFiller
	KindSpacer
	KindPageBreak
)

func (k Kind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindRowItem:
		return "item"
	case KindFiller:
		return "filler"
	case KindSpacer:
		return "spacer"
	case KindPageBreak:
		return "break"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FillerKind distinguishes rigid filler blocks from a single exact-height row.
type FillerKind int

const (
	// FillerDummyRowItem is a block of DummyRowHeight, emitted Count times
	FillerDummyRowItem FillerKind = iota
	// FillerDummyRow is one block sized to the exact remaining height
	FillerDummyRow
)

// Element is a single renderer instruction.
type Element struct {
	Kind Kind

	// KindSection
	Section SectionKind
	// KindRowItem, index into Registry.Items
	Index int

	// KindFiller and KindSpacer
	Filler  FillerKind
	Count   int
	Height  float64
	Content string
}

// EmitSection places a structural section.
func EmitSection(kind SectionKind) Element {
	return Element{Kind: KindSection, Section: kind}
}

// EmitRowItem places row item i.
func EmitRowItem(i int) Element {
	return Element{Kind: KindRowItem, Index: i}
}

// EmitFiller places count filler blocks of the given height each.
func EmitFiller(kind FillerKind, count int, height float64, content string) Element {
	return Element{Kind: KindFiller, Filler: kind, Count: count, Height: height, Content: content}
}

// EmitSpacer places an invisible block.
func EmitSpacer(height float64) Element {
	return Element{Kind: KindSpacer, Count: 1, Height: height}
}

// PageBreak closes the current page.
func PageBreak() Element {
	return Element{Kind: KindPageBreak}
}

// Extent is the vertical space the element takes on a page.
func (e Element) Extent(reg *Registry) float64 {
	switch e.Kind {
	case KindSection:
		return reg.Height(e.Section)
	case KindRowItem:
		if e.Index >= 0 && e.Index < len(reg.Items) {
			return reg.Items[e.Index].Height
		}
	case KindFiller, KindSpacer:
		return float64(e.Count) * e.Height
	}
	return 0
}

func (e Element) String() string {
	switch e.Kind {
	case KindSection:
		return e.Section.String()
	case KindRowItem:
		return fmt.Sprintf("item[%d]", e.Index)
	case KindFiller:
		if e.Filler == FillerDummyRow {
			return fmt.Sprintf("dummy_row(%g)", e.Height)
		}
		return fmt.Sprintf("dummy_row_item(%dx%g)", e.Count, e.Height)
	case KindSpacer:
		return fmt.Sprintf("spacer(%g)", e.Height)
	case KindPageBreak:
		return "|"
	}
	return e.Kind.String()
}

// Stream is the ordered output of the page builder.
type Stream []Element

func (s Stream) String() string {
	parts := make([]string, 0, len(s))
	for _, e := range s {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, " ")
}

// Page is a slice of the stream between two page breaks.
type Page struct {
	Number   int
	Elements []Element
	Height   float64
}

// Items returns indexes of row items placed on the page.
func (p Page) Items() []int {
	var out []int
	for _, e := range p.Elements {
		if e.Kind == KindRowItem {
			out = append(out, e.Index)
		}
	}
	return out
}

// Pages splits the stream at page breaks and totals each page height.
func (s Stream) Pages(reg *Registry) []Page {
	pages := []Page{{Number: 1}}
	for _, e := range s {
		if e.Kind == KindPageBreak {
			pages = append(pages, Page{Number: len(pages) + 1})
			continue
		}
		cur := &pages[len(pages)-1]
		cur.Elements = append(cur.Elements, e)
		cur.Height = round2(cur.Height + e.Extent(reg))
	}
	return pages
}

// PageCount returns the number of pages the stream renders to.
func (s Stream) PageCount() int {
	n := 1
	for _, e := range s {
		if e.Kind == KindPageBreak {
			n++
		}
	}
	return n
}

// Placement returns, for every row item index, the zero based page it was
// placed on. Items never emitted are reported as -1.
func (s Stream) Placement(items int) []int {
	out := make([]int, items)
	for i := range out {
		out[i] = -1
	}
	page := 0
	for _, e := range s {
		switch e.Kind {
		case KindPageBreak:
			page++
		case KindRowItem:
			if e.Index >= 0 && e.Index < items {
				out[e.Index] = page
			}
		}
	}
	return out
}

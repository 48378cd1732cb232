package pagination

import (
	"errors"
	"fmt"
)

// SectionKind identifies one of the fixed structural blocks of a print form.
type SectionKind int

const (
	SectionHeader SectionKind = iota
	SectionDocInfo
	SectionRowHeader
	SectionFooter
	SectionFooterLogo

	SectionCount = int(SectionFooterLogo) + 1
)

// HeaderSections are opened on every page, in this order.
var HeaderSections = [...]SectionKind{SectionHeader, SectionDocInfo, SectionRowHeader}

func (k SectionKind) String() string {
	switch k {
	case SectionHeader:
		return "header"
	case SectionDocInfo:
		return "docinfo"
	case SectionRowHeader:
		return "rowheader"
	case SectionFooter:
		return "footer"
	case SectionFooterLogo:
		return "footer_logo"
	default:
		return fmt.Sprintf("section(%d)", int(k))
	}
}

// ErrInvalidHeight is returned for negative measured heights.
var ErrInvalidHeight = errors.New("invalid height")

// Section is a measured structural block. Absent sections have zero height
// and are never emitted.
type Section struct {
	Present bool
	Height  float64
}

// RowItem is one measured unit of repeating content.
type RowItem struct {
	Height           float64
	ForceBreakBefore bool
}

// Registry holds everything the page builder needs to know about a document.
type Registry struct {
	Sections [SectionCount]Section
	Items    []RowItem
}

// SetSection records a present section.
func (r *Registry) SetSection(kind SectionKind, height float64) {
	r.Sections[kind] = Section{Present: true, Height: height}
}

// Present reports whether the document has the section.
func (r *Registry) Present(kind SectionKind) bool {
	return r.Sections[kind].Present
}

// Height returns section height, 0 for absent sections.
func (r *Registry) Height(kind SectionKind) float64 {
	if !r.Sections[kind].Present {
		return 0
	}
	return r.Sections[kind].Height
}

// Validate checks that the registry holds no negative heights.
func (r *Registry) Validate() error {
	for k, s := range r.Sections {
		if s.Present && s.Height < 0 {
			return fmt.Errorf("%w: %s height %g", ErrInvalidHeight, SectionKind(k), s.Height)
		}
	}
	for i, it := range r.Items {
		if it.Height < 0 {
			return fmt.Errorf("%w: row item %d height %g", ErrInvalidHeight, i, it.Height)
		}
	}
	return nil
}

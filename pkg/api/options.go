package api

import (
	"go.uber.org/zap"

	"github.com/gompdf/printform/internal/config"
	"github.com/gompdf/printform/internal/measure"
	"github.com/gompdf/printform/internal/pagination"
)

// Options represents configuration options for the print form paginator
type Options struct {
	// Base pagination policy, attributes of every print form override it
	Config config.Config

	// Logger receives processing logs, nil discards them
	Logger *zap.Logger
	Debug  bool

	// Measurer overrides the height oracle, nil reads heights from document
	// attributes and styles
	Measurer measure.Measurer

	// When true, preview pages carry paper frame and footer guides
	DebugDrawBoxes bool

	// Resource paths
	ResourcePaths []string

	// Preview metadata
	Title    string
	Author   string
	Subject  string
	Keywords string
}

// Option is a function that modifies Options
type Option func(*Options)

// Section names a structural block of a print form
type Section = pagination.SectionKind

const (
	SectionHeader     = pagination.SectionHeader
	SectionDocInfo    = pagination.SectionDocInfo
	SectionRowHeader  = pagination.SectionRowHeader
	SectionFooter     = pagination.SectionFooter
	SectionFooterLogo = pagination.SectionFooterLogo
)

// FillPolicy names one of the ways to consume slack at the bottom of a page
type FillPolicy int

const (
	FillDummyRowItem FillPolicy = iota
	FillDummyRow
	FillFooterSpacer
	FillFooterSpacerWithDummyRowItem
)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		Config:        config.Default(),
		ResourcePaths: []string{},
	}
}

// WithConfig replaces the base pagination policy
func WithConfig(cfg config.Config) Option {
	return func(o *Options) {
		o.Config = cfg
	}
}

// WithPageSize sets the paper size, in px
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.Config.PageWidth = width
		o.Config.PageHeight = height
	}
}

// WithDummyRowHeight sets the height of a single filler block, in px
func WithDummyRowHeight(height float64) Option {
	return func(o *Options) {
		o.Config.DummyRowHeight = height
	}
}

// WithCustomDummyContent sets the markup of filler blocks
func WithCustomDummyContent(content string) Option {
	return func(o *Options) {
		o.Config.CustomDummyContent = content
	}
}

// WithRepeat sets whether a section is repeated on every page
func WithRepeat(section Section, repeat bool) Option {
	return func(o *Options) {
		switch section {
		case SectionHeader:
			o.Config.RepeatHeader = repeat
		case SectionDocInfo:
			o.Config.RepeatDocInfo = repeat
		case SectionRowHeader:
			o.Config.RepeatRowHeader = repeat
		case SectionFooter:
			o.Config.RepeatFooter = repeat
		case SectionFooterLogo:
			o.Config.RepeatFooterLogo = repeat
		}
	}
}

// WithFiller enables or disables a fill policy
func WithFiller(policy FillPolicy, enabled bool) Option {
	return func(o *Options) {
		switch policy {
		case FillDummyRowItem:
			o.Config.InsertDummyRowItem = enabled
		case FillDummyRow:
			o.Config.InsertDummyRow = enabled
		case FillFooterSpacer:
			o.Config.InsertFooterSpacer = enabled
		case FillFooterSpacerWithDummyRowItem:
			o.Config.InsertFooterSpacerWithDummyRowItem = enabled
		}
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = log
	}
}

// WithMeasurer sets the height oracle
func WithMeasurer(m measure.Measurer) Option {
	return func(o *Options) {
		o.Measurer = m
	}
}

// WithDebug sets the debug mode
func WithDebug(debug bool) Option {
	return func(o *Options) {
		o.Debug = debug
	}
}

// WithDebugDrawBoxes toggles guides on preview pages
func WithDebugDrawBoxes(draw bool) Option {
	return func(o *Options) {
		o.DebugDrawBoxes = draw
	}
}

// WithResourcePath adds a path to search for resources
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithTitle sets the preview title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the preview author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the preview subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the preview keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// Standard paper sizes in CSS px (96 per inch)
const (
	PageSizeA4Width  = 793.7
	PageSizeA4Height = 1122.52
	PageSizeA5Width  = 559.37
	PageSizeA5Height = 793.7

	PageSizeLetterWidth  = 816
	PageSizeLetterHeight = 1056
	PageSizeLegalWidth   = 816
	PageSizeLegalHeight  = 1344
)

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(PageSizeA4Width, PageSizeA4Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(PageSizeLetterWidth, PageSizeLetterHeight)
}

// WithPageSizeLegal sets the page size to US Legal
func WithPageSizeLegal() Option {
	return WithPageSize(PageSizeLegalWidth, PageSizeLegalHeight)
}

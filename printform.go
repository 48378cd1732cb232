// Package printform splits print forms of an HTML document into pages of
// fixed height, repeating headers and footers and filling leftover space.
package printform

import (
	"github.com/gompdf/printform/pkg/api"
)

type Converter = api.Converter
type Options = api.Options
type Option = api.Option
type Section = api.Section
type FillPolicy = api.FillPolicy
type Report = api.Report
type FormReport = api.FormReport
type FormPlan = api.FormPlan

var ErrNoForms = api.ErrNoForms

func New() *Converter                           { return api.New() }
func NewWithOptions(options Options) *Converter { return api.NewWithOptions(options) }
func DefaultOptions() Options                   { return api.DefaultOptions() }

var (
	WithConfig             = api.WithConfig
	WithPageSize           = api.WithPageSize
	WithDummyRowHeight     = api.WithDummyRowHeight
	WithCustomDummyContent = api.WithCustomDummyContent
	WithRepeat             = api.WithRepeat
	WithFiller             = api.WithFiller
	WithLogger             = api.WithLogger
	WithMeasurer           = api.WithMeasurer
	WithDebug              = api.WithDebug
	WithDebugDrawBoxes     = api.WithDebugDrawBoxes
	WithResourcePath       = api.WithResourcePath
	WithTitle              = api.WithTitle
	WithAuthor             = api.WithAuthor
	WithSubject            = api.WithSubject
	WithKeywords           = api.WithKeywords
	WithPageSizeA4         = api.WithPageSizeA4
	WithPageSizeLetter     = api.WithPageSizeLetter
	WithPageSizeLegal      = api.WithPageSizeLegal
)

const (
	SectionHeader     = api.SectionHeader
	SectionDocInfo    = api.SectionDocInfo
	SectionRowHeader  = api.SectionRowHeader
	SectionFooter     = api.SectionFooter
	SectionFooterLogo = api.SectionFooterLogo

	FillDummyRowItem                 = api.FillDummyRowItem
	FillDummyRow                     = api.FillDummyRow
	FillFooterSpacer                 = api.FillFooterSpacer
	FillFooterSpacerWithDummyRowItem = api.FillFooterSpacerWithDummyRowItem
)

const (
	PageSizeA4Width  = api.PageSizeA4Width
	PageSizeA4Height = api.PageSizeA4Height
	PageSizeA5Width  = api.PageSizeA5Width
	PageSizeA5Height = api.PageSizeA5Height

	PageSizeLetterWidth  = api.PageSizeLetterWidth
	PageSizeLetterHeight = api.PageSizeLetterHeight
	PageSizeLegalWidth   = api.PageSizeLegalWidth
	PageSizeLegalHeight  = api.PageSizeLegalHeight
)

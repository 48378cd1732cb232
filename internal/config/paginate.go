package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidConfig is returned when a pagination configuration cannot be used.
var ErrInvalidConfig = errors.New("invalid pagination config")

// Config represents the resolved pagination policy for a single print form.
// It is passed by value, one copy per document.
type Config struct {
	// Sections repeated on every page. Non repeating header sections are shown
	// on the first page only, non repeating footer sections on the last page only.
	RepeatHeader     bool `yaml:"repeat_header"`
	RepeatDocInfo    bool `yaml:"repeat_docinfo"`
	RepeatRowHeader  bool `yaml:"repeat_rowheader"`
	RepeatFooter     bool `yaml:"repeat_footer"`
	RepeatFooterLogo bool `yaml:"repeat_footer_logo"`

	// Space filling policies applied when a page is closed
	InsertDummyRowItem                 bool `yaml:"insert_dummy_row_item"`
	InsertDummyRow                     bool `yaml:"insert_dummy_row"`
	InsertFooterSpacer                 bool `yaml:"insert_footer_spacer"`
	InsertFooterSpacerWithDummyRowItem bool `yaml:"insert_footer_spacer_with_dummy_row_item"`

	// Literal markup for each filler block, empty means a default minimal row
	CustomDummyContent string `yaml:"custom_dummy_row_item_content"`

	// Paper dimensions and filler unit, in px
	PageWidth      float64 `yaml:"papersize_width" validate:"gt=0"`
	PageHeight     float64 `yaml:"papersize_height" validate:"gt=0"`
	DummyRowHeight float64 `yaml:"height_of_dummy_row_item" validate:"gte=0"`
}

// Default returns the documented default pagination policy.
func Default() Config {
	return Config{
		RepeatHeader:     true,
		RepeatDocInfo:    true,
		RepeatRowHeader:  true,
		RepeatFooter:     false,
		RepeatFooterLogo: false,

		InsertDummyRowItem:                 true,
		InsertDummyRow:                     false,
		InsertFooterSpacer:                 true,
		InsertFooterSpacerWithDummyRowItem: true,

		CustomDummyContent: "",

		PageWidth:      750,
		PageHeight:     1050,
		DummyRowHeight: 18,
	}
}

// UsesDummyRowItems reports whether any policy emits rigid filler blocks.
func (c Config) UsesDummyRowItems() bool {
	return c.InsertDummyRowItem || c.InsertFooterSpacerWithDummyRowItem
}

// Validate checks numeric values the pagination arithmetic depends on.
func (c Config) Validate() error {
	if c.PageHeight <= 0 {
		return fmt.Errorf("%w: page height must be positive, got %g", ErrInvalidConfig, c.PageHeight)
	}
	if c.PageWidth <= 0 {
		return fmt.Errorf("%w: page width must be positive, got %g", ErrInvalidConfig, c.PageWidth)
	}
	if c.UsesDummyRowItems() && c.DummyRowHeight <= 0 {
		return fmt.Errorf("%w: dummy row height must be positive when dummy row items are enabled, got %g", ErrInvalidConfig, c.DummyRowHeight)
	}
	return nil
}

// AttrSource provides named options, for example data attributes of an element.
type AttrSource interface {
	Lookup(name string) (string, bool)
}

// AttrMap is an AttrSource backed by a map.
type AttrMap map[string]string

// Lookup implements AttrSource.
func (m AttrMap) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Attribute names understood by Resolve.
const (
	AttrRepeatHeader                       = "data-repeat-header"
	AttrRepeatDocInfo                      = "data-repeat-docinfo"
	AttrRepeatRowHeader                    = "data-repeat-rowheader"
	AttrRepeatFooter                       = "data-repeat-footer"
	AttrRepeatFooterLogo                   = "data-repeat-footer-logo"
	AttrInsertDummyRowItem                 = "data-insert-dummy-row-item-while-format-table"
	AttrInsertDummyRow                     = "data-insert-dummy-row-while-format-table"
	AttrInsertFooterSpacer                 = "data-insert-footer-spacer-while-format-table"
	AttrInsertFooterSpacerWithDummyRowItem = "data-insert-footer-spacer-with-dummy-row-item-while-format-table"
	AttrCustomDummyContent                 = "data-custom-dummy-row-item-content"
	AttrPageWidth                          = "data-papersize-width"
	AttrPageHeight                         = "data-papersize-height"
	AttrDummyRowHeight                     = "data-height-of-dummy-row-item"
)

// Resolve overlays every option present in src on top of base. Missing or
// empty values keep the base value, so do numbers that fail to parse.
func Resolve(src AttrSource, base Config) Config {
	cfg := base
	if src == nil {
		return cfg
	}

	boolOpt := func(name string, dst *bool) {
		if v, ok := lookup(src, name); ok {
			*dst = ParseYN(v)
		}
	}
	numOpt := func(name string, dst *float64) {
		if v, ok := lookup(src, name); ok {
			if n, err := strconv.ParseFloat(strings.TrimSuffix(v, "px"), 64); err == nil {
				*dst = n
			}
		}
	}

	boolOpt(AttrRepeatHeader, &cfg.RepeatHeader)
	boolOpt(AttrRepeatDocInfo, &cfg.RepeatDocInfo)
	boolOpt(AttrRepeatRowHeader, &cfg.RepeatRowHeader)
	boolOpt(AttrRepeatFooter, &cfg.RepeatFooter)
	boolOpt(AttrRepeatFooterLogo, &cfg.RepeatFooterLogo)
	boolOpt(AttrInsertDummyRowItem, &cfg.InsertDummyRowItem)
	boolOpt(AttrInsertDummyRow, &cfg.InsertDummyRow)
	boolOpt(AttrInsertFooterSpacer, &cfg.InsertFooterSpacer)
	boolOpt(AttrInsertFooterSpacerWithDummyRowItem, &cfg.InsertFooterSpacerWithDummyRowItem)

	if v, ok := lookup(src, AttrCustomDummyContent); ok {
		cfg.CustomDummyContent = v
	}

	numOpt(AttrPageWidth, &cfg.PageWidth)
	numOpt(AttrPageHeight, &cfg.PageHeight)
	numOpt(AttrDummyRowHeight, &cfg.DummyRowHeight)
	return cfg
}

func lookup(src AttrSource, name string) (string, bool) {
	v, ok := src.Lookup(name)
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// ParseYN interprets y/n style flags. Anything not recognized as "yes" is
// false.
func ParseYN(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "y", "yes", "true", "1":
		return true
	default:
		return false
	}
}

// FormatYN is the inverse of ParseYN.
func FormatYN(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

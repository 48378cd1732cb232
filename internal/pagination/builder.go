package pagination

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/gompdf/printform/internal/config"
)

var (
	// ErrNoCapacity means repeating sections leave no room for content.
	ErrNoCapacity = errors.New("no page capacity left for row items")
	// ErrFooterOverflow means the final footer does not fit even on a fresh page.
	ErrFooterOverflow = errors.New("footer does not fit on a page")
	// ErrRowItemOverflow means a single row item is taller than a fresh page.
	ErrRowItemOverflow = errors.New("row item does not fit on a page")
)

// Repeats reports whether the section is re-emitted on every page.
func Repeats(cfg config.Config, kind SectionKind) bool {
	switch kind {
	case SectionHeader:
		return cfg.RepeatHeader
	case SectionDocInfo:
		return cfg.RepeatDocInfo
	case SectionRowHeader:
		return cfg.RepeatRowHeader
	case SectionFooter:
		return cfg.RepeatFooter
	case SectionFooterLogo:
		return cfg.RepeatFooterLogo
	}
	return false
}

// Capacity is the content height available on every page once repeating
// sections are reserved.
func Capacity(cfg config.Config, reg *Registry) float64 {
	capacity := cfg.PageHeight
	for k := range SectionCount {
		if Repeats(cfg, SectionKind(k)) {
			capacity -= reg.Height(SectionKind(k))
		}
	}
	return round2(capacity)
}

// pageState is the accounting of the open page.
type pageState struct {
	number int
	height float64
	items  int
}

type builder struct {
	cfg      config.Config
	reg      *Registry
	log      *zap.Logger
	capacity float64
	page     pageState
	out      Stream
}

// Build runs the page builder over the registry and returns the page element
// stream. Neither cfg nor reg are modified.
func Build(cfg config.Config, reg *Registry, log *zap.Logger) (Stream, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	b := &builder{
		cfg:      cfg,
		reg:      reg,
		log:      log,
		capacity: Capacity(cfg, reg),
	}
	if b.capacity <= 0 {
		return nil, fmt.Errorf("%w: page height %g, capacity %g", ErrNoCapacity, cfg.PageHeight, b.capacity)
	}

	b.openFirstPage()
	for i, item := range reg.Items {
		if err := b.place(i, item); err != nil {
			return nil, err
		}
	}
	if err := b.finish(); err != nil {
		return nil, err
	}

	log.Debug("Pagination done",
		zap.Int("items", len(reg.Items)),
		zap.Int("pages", b.page.number),
		zap.Float64("capacity", b.capacity))
	return b.out, nil
}

func (b *builder) emit(e Element) {
	b.out = append(b.out, e)
}

func (b *builder) emitSection(kind SectionKind) {
	if b.reg.Present(kind) {
		b.emit(EmitSection(kind))
	}
}

// openFirstPage always shows header sections, non repeating ones are charged
// to the page since capacity does not account for them.
func (b *builder) openFirstPage() {
	b.page = pageState{number: 1}
	for _, kind := range HeaderSections {
		b.emitSection(kind)
		if !Repeats(b.cfg, kind) {
			b.charge(b.reg.Height(kind))
		}
	}
}

// openPage starts a following page, only repeating header sections are shown.
func (b *builder) openPage() {
	b.page = pageState{number: b.page.number + 1}
	for _, kind := range HeaderSections {
		if Repeats(b.cfg, kind) {
			b.emitSection(kind)
		}
	}
}

func (b *builder) charge(h float64) {
	b.page.height = round2(b.page.height + h)
}

func (b *builder) remaining() float64 {
	return round2(b.capacity - b.page.height)
}

func (b *builder) fits(h float64) bool {
	return round2(b.page.height+h) <= b.capacity
}

func (b *builder) place(i int, item RowItem) error {
	switch {
	case item.ForceBreakBefore && b.page.items > 0:
		b.cut(i, "forced")
	case !b.fits(item.Height):
		if b.page.items == 0 && b.page.height == 0 {
			return fmt.Errorf("%w: item %d height %g, capacity %g", ErrRowItemOverflow, i, item.Height, b.capacity)
		}
		b.cut(i, "overflow")
	}
	if !b.fits(item.Height) {
		return fmt.Errorf("%w: item %d height %g, capacity %g", ErrRowItemOverflow, i, item.Height, b.capacity)
	}

	b.emit(EmitRowItem(i))
	b.charge(item.Height)
	b.page.items++
	return nil
}

// cut closes the open page and starts the next one.
func (b *builder) cut(item int, reason string) {
	b.log.Debug("Page cut",
		zap.Int("page", b.page.number),
		zap.Int("item", item),
		zap.String("reason", reason),
		zap.Float64("height", b.page.height))

	b.closePage(false)
	b.emit(PageBreak())
	b.openPage()
}

// closePage fills the page and emits footer sections. On intermediate pages
// only repeating footers are shown, the final close shows both.
func (b *builder) closePage(final bool) {
	b.fill(final)
	for _, kind := range [...]SectionKind{SectionFooter, SectionFooterLogo} {
		if final || Repeats(b.cfg, kind) {
			b.emitSection(kind)
		}
	}
}

// finish places the final footer, on the last page when it fits,
// otherwise on a page of its own.
func (b *builder) finish() error {
	var reserve float64
	for _, kind := range [...]SectionKind{SectionFooter, SectionFooterLogo} {
		if !Repeats(b.cfg, kind) {
			reserve += b.reg.Height(kind)
		}
	}
	reserve = round2(reserve)

	if b.fits(reserve) {
		b.charge(reserve)
		b.closePage(true)
		return nil
	}
	if reserve > b.capacity {
		return fmt.Errorf("%w: footer height %g, capacity %g", ErrFooterOverflow, reserve, b.capacity)
	}

	b.log.Debug("Footer moved to a new page",
		zap.Int("page", b.page.number),
		zap.Float64("height", b.page.height),
		zap.Float64("footer", reserve))

	b.closePage(false)
	b.emit(PageBreak())
	b.openPage()
	b.charge(reserve)
	b.closePage(true)
	return nil
}

// round2 keeps height arithmetic at 0.01 px precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

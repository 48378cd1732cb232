package pagination

import (
	"math"

	"go.uber.org/zap"
)

// fill consumes the slack of the page being closed according to the
// configured filling policies.
func (b *builder) fill(final bool) {
	if b.cfg.InsertDummyRowItem {
		b.dummyRowItems()
	}
	if b.cfg.InsertDummyRow {
		if r := b.remaining(); r > 0 {
			b.emit(EmitFiller(FillerDummyRow, 1, r, b.cfg.CustomDummyContent))
			b.charge(r)
		}
	}

	switch {
	case b.cfg.InsertFooterSpacerWithDummyRowItem:
		b.dummyRowItems()
	case b.cfg.InsertFooterSpacer:
		h := b.remaining()
		if !final && !b.cfg.RepeatFooterLogo {
			h = round2(h - b.reg.Height(SectionFooterLogo))
		}
		b.emit(EmitSpacer(math.Max(0, h)))
		b.charge(math.Max(0, h))
	}
}

// dummyRowItems emits as many whole filler blocks as fit in the remaining
// space. The sub-unit remainder is left for the following policies.
func (b *builder) dummyRowItems() {
	unit := b.cfg.DummyRowHeight
	r := b.remaining()
	if unit <= 0 || r <= 0 {
		return
	}

	// integer hundredths keep floor and mod exact for values like 0.3
	rc, uc := int64(math.Round(r*100)), int64(math.Round(unit*100))
	if uc == 0 {
		return
	}
	n, rem := rc/uc, rc%uc
	if n == 0 {
		return
	}

	b.emit(EmitFiller(FillerDummyRowItem, int(n), unit, b.cfg.CustomDummyContent))
	b.page.height = round2(b.capacity - float64(rem)/100)

	b.log.Debug("Dummy row items",
		zap.Int("page", b.page.number),
		zap.Int64("count", n),
		zap.Float64("left", float64(rem)/100))
}

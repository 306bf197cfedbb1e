package layout

import "quill/pkg/text"

// Option configures a LayoutDocument call.
type Option func(*config)

type config struct {
	text               text.Layout
	scrollbarThickness float64
	maxIterations      int
	pageHeight         float64 // > 0 enables paged media
	defaultFontSize    float64
}

func defaultConfig() config {
	return config{
		text:               text.Monospace{Advance: 8, LineHeight: 18},
		scrollbarThickness: 16,
		maxIterations:      3,
		defaultFontSize:    16,
	}
}

// WithTextLayout sets the text shaping collaborator.
func WithTextLayout(t text.Layout) Option {
	return func(c *config) {
		if t != nil {
			c.text = t
		}
	}
}

// WithScrollbarThickness sets the space a scrollbar reserves. Zero gives
// overlay scrollbars.
func WithScrollbarThickness(px float64) Option {
	return func(c *config) {
		if px >= 0 {
			c.scrollbarThickness = px
		}
	}
}

// WithMaxSettlementIterations bounds the scrollbar settlement loop.
func WithMaxSettlementIterations(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithPagedMedia switches to paged layout with the given page height.
// Scrollbars are not computed in paged mode.
func WithPagedMedia(pageHeight float64) Option {
	return func(c *config) {
		if pageHeight > 0 {
			c.pageHeight = pageHeight
		}
	}
}

// WithDefaultFontSize sets the root font size.
func WithDefaultFontSize(px float64) Option {
	return func(c *config) {
		if px > 0 {
			c.defaultFontSize = px
		}
	}
}

func (c config) paged() bool { return c.pageHeight > 0 }

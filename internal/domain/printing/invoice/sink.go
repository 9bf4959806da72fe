package invoice

// Align is the horizontal anchoring of a text run relative to its x.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Font selects the size and weight of a text run.
type Font struct {
	Size float64
	Bold bool
}

// TextMetrics wraps text the way the output backend will measure it.
// SplitText must return at least one line, even for empty text.
type TextMetrics interface {
	SplitText(text string, font Font, maxWidth float64) []string
}

// DocumentSink receives draw operations in order. For AlignRight x is the
// right edge of the run and for AlignCenter it is the midpoint.
type DocumentSink interface {
	Text(text string, x, y float64, font Font, align Align)
	Line(x1, y1, x2, y2 float64)
	AddPage()
}

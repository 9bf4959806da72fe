package invoice

// RuleGap is the vertical space consumed by a horizontal rule.
const RuleGap = 3

// TextOptions tunes a LayoutText call. Zero values fall back to the page
// geometry defaults.
type TextOptions struct {
	FontSize   float64
	Bold       bool
	MaxWidth   float64
	Align      Align
	LineHeight float64
}

// Session threads the layout cursor through one render.
type Session struct {
	geo     PageGeometry
	metrics TextMetrics
	sink    DocumentSink

	// Y is the baseline where the next element will be drawn.
	Y     float64
	pages int
}

// NewSession starts a render on the sink's current (first) page with the
// cursor at the top margin.
func NewSession(geo PageGeometry, metrics TextMetrics, sink DocumentSink) *Session {
	if metrics == nil || sink == nil {
		panic("invoice: session requires text metrics and a document sink")
	}
	return &Session{
		geo:     geo,
		metrics: metrics,
		sink:    sink,
		Y:       geo.Margin,
		pages:   1,
	}
}

// Geometry returns the page geometry of the session.
func (s *Session) Geometry() PageGeometry { return s.geo }

// Pages returns the number of pages emitted so far.
func (s *Session) Pages() int { return s.pages }

func (s *Session) resolve(opts TextOptions) TextOptions {
	if opts.FontSize == 0 {
		opts.FontSize = s.geo.BodySize
	}
	if opts.MaxWidth == 0 {
		opts.MaxWidth = s.geo.ContentWidth()
	}
	if opts.Align == "" {
		opts.Align = AlignLeft
	}
	if opts.LineHeight == 0 {
		opts.LineHeight = s.geo.LineHeight(opts.FontSize)
	}
	return opts
}

func (s *Session) split(text string, font Font, maxWidth float64) []string {
	lines := s.metrics.SplitText(text, font, maxWidth)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// anchorX ignores x for centered and right-aligned text.
func (s *Session) anchorX(x float64, align Align) float64 {
	switch align {
	case AlignCenter:
		return s.geo.Width / 2
	case AlignRight:
		return s.geo.Width - s.geo.Margin
	default:
		return x
	}
}

// LayoutText wraps text, draws each line starting at baseline y and returns
// the wrapped lines with the y just below the last line. It does not move the
// session cursor.
func (s *Session) LayoutText(text string, x, y float64, opts TextOptions) ([]string, float64) {
	opts = s.resolve(opts)
	font := Font{Size: opts.FontSize, Bold: opts.Bold}
	lines := s.split(text, font, opts.MaxWidth)
	xPos := s.anchorX(x, opts.Align)
	for i, line := range lines {
		s.sink.Text(line, xPos, y+float64(i)*opts.LineHeight, font, opts.Align)
	}
	return lines, y + float64(len(lines))*opts.LineHeight
}

// TextHeight returns the height LayoutText would consume for text.
func (s *Session) TextHeight(text string, opts TextOptions) float64 {
	opts = s.resolve(opts)
	lines := s.split(text, Font{Size: opts.FontSize, Bold: opts.Bold}, opts.MaxWidth)
	return float64(len(lines)) * opts.LineHeight
}

// CheckPageBreak starts a new page when required more points do not fit
// above the bottom margin. It reports whether a page was added.
func (s *Session) CheckPageBreak(required float64) bool {
	if s.Y+required <= s.geo.Bottom() {
		return false
	}
	s.sink.AddPage()
	s.pages++
	s.Y = s.geo.Margin
	return true
}

// DrawRule draws a horizontal line of the given width from the left margin at
// y and returns the y below it.
func (s *Session) DrawRule(y, width float64) float64 {
	s.sink.Line(s.geo.Margin, y, s.geo.Margin+width, y)
	return y + RuleGap
}

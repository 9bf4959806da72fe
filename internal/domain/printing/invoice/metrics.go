package invoice

import (
	"strings"
	"unicode/utf8"
)

// WidthFunc measures the advance width of s in font.
type WidthFunc func(s string, font Font) float64

// WrapText breaks text greedily at spaces so no line is wider than maxWidth.
// Words wider than maxWidth are split between runes. Explicit newlines always
// break. The result has at least one line.
func WrapText(text string, font Font, maxWidth float64, width WidthFunc) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, w := range words {
			for width(w, font) > maxWidth && utf8.RuneCountInString(w) > 1 {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				var head string
				head, w = splitToWidth(w, font, maxWidth, width)
				out = append(out, head)
			}
			if line == "" {
				line = w
				continue
			}
			candidate := line + " " + w
			if width(candidate, font) > maxWidth {
				out = append(out, line)
				line = w
			} else {
				line = candidate
			}
		}
		out = append(out, line)
	}
	return out
}

func splitToWidth(w string, font Font, maxWidth float64, width WidthFunc) (string, string) {
	runes := []rune(w)
	n := 1
	for n < len(runes)-1 && width(string(runes[:n+1]), font) <= maxWidth {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

// FixedWidthMetrics approximates every glyph with the same advance, expressed
// as a fraction of the font size. Bold adds ten percent.
type FixedWidthMetrics struct {
	Advance float64
}

// Width implements WidthFunc.
func (m FixedWidthMetrics) Width(s string, font Font) float64 {
	adv := m.Advance
	if adv == 0 {
		adv = 0.5
	}
	if font.Bold {
		adv *= 1.1
	}
	return float64(utf8.RuneCountInString(s)) * font.Size * adv
}

func (m FixedWidthMetrics) SplitText(text string, font Font, maxWidth float64) []string {
	return WrapText(text, font, maxWidth, m.Width)
}

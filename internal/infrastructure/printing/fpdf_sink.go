package printing

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/murdhanno/backend/internal/domain/printing/invoice"
	"golang.org/x/text/encoding/charmap"
)

// FontFamily is the core font every invoice is set in
const FontFamily = "Helvetica"

// takaSign has no glyph in the core fonts
const takaSign = "৳"

// FpdfDocument is an fpdf backed page that measures text with the same font
// metrics it draws with. It implements both invoice.TextMetrics and
// invoice.DocumentSink so wrapping decisions match the written output.
type FpdfDocument struct {
	pdf     *fpdf.Fpdf
	current invoice.Font
	hasFont bool
}

// NewFpdfDocument creates a document sized to the geometry with its first
// page already open. Margins and automatic page breaks are disabled; the
// layout engine positions every run itself.
func NewFpdfDocument(geo invoice.PageGeometry, title string) *FpdfDocument {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: geo.Width, Ht: geo.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetLineWidth(0.5)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.SetCreator("murdhanno", true)
	pdf.AddPage()

	return &FpdfDocument{pdf: pdf}
}

func (d *FpdfDocument) setFont(font invoice.Font) {
	if d.hasFont && d.current == font {
		return
	}
	style := ""
	if font.Bold {
		style = "B"
	}
	d.pdf.SetFont(FontFamily, style, font.Size)
	d.current = font
	d.hasFont = true
}

// Width returns the rendered width of s in points
func (d *FpdfDocument) Width(s string, font invoice.Font) float64 {
	d.setFont(font)
	return d.pdf.GetStringWidth(encodeText(s))
}

// SplitText wraps with fpdf's own line breaker so wrapping matches the glyph
// widths it draws with. Lines come back as UTF-8; runes outside cp1252 read
// as '?'.
func (d *FpdfDocument) SplitText(text string, font invoice.Font, maxWidth float64) []string {
	d.setFont(font)
	lines := d.pdf.SplitText(codePoints(encodeText(text)), maxWidth)
	if len(lines) == 0 {
		return []string{""}
	}
	dec := charmap.Windows1252.NewDecoder()
	for i, line := range lines {
		decoded, err := dec.String(codeBytes(line))
		if err != nil {
			decoded = line
		}
		lines[i] = decoded
	}
	return lines
}

// Text draws a run with y as its baseline
func (d *FpdfDocument) Text(text string, x, y float64, font invoice.Font, align invoice.Align) {
	d.setFont(font)
	encoded := encodeText(text)
	switch align {
	case invoice.AlignRight:
		x -= d.pdf.GetStringWidth(encoded)
	case invoice.AlignCenter:
		x -= d.pdf.GetStringWidth(encoded) / 2
	}
	d.pdf.Text(x, y, encoded)
}

func (d *FpdfDocument) Line(x1, y1, x2, y2 float64) {
	d.pdf.Line(x1, y1, x2, y2)
}

func (d *FpdfDocument) AddPage() {
	d.pdf.AddPage()
}

// PageCount returns the number of pages written so far
func (d *FpdfDocument) PageCount() int {
	return d.pdf.PageNo()
}

// Err returns the first error fpdf recorded, if any
func (d *FpdfDocument) Err() error {
	return d.pdf.Error()
}

// Output closes the document and writes it to w
func (d *FpdfDocument) Output(w io.Writer) error {
	return d.pdf.Output(w)
}

// Bytes closes the document and returns the encoded PDF
func (d *FpdfDocument) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeText maps UTF-8 text onto the cp1252 code page used by the core
// fonts. Runes outside the code page print as '?'.
func encodeText(s string) string {
	s = strings.ReplaceAll(s, takaSign, "Tk ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < utf8.RuneSelf {
			b.WriteByte(byte(r))
			continue
		}
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}

// codePoints widens every cp1252 byte to the rune of the same value, the
// indexing fpdf uses for core font widths.
func codePoints(encoded string) string {
	var b strings.Builder
	b.Grow(2 * len(encoded))
	for i := 0; i < len(encoded); i++ {
		b.WriteRune(rune(encoded[i]))
	}
	return b.String()
}

// codeBytes undoes codePoints.
func codeBytes(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	for _, r := range line {
		b.WriteByte(byte(r))
	}
	return b.String()
}

var (
	_ invoice.TextMetrics  = (*FpdfDocument)(nil)
	_ invoice.DocumentSink = (*FpdfDocument)(nil)
)

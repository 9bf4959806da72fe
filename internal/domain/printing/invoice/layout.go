package invoice

import (
	"fmt"
	"strconv"
)

const (
	DefaultTitle  = "MURDHANNO"
	DefaultFooter = "Thank you!"
)

// Option customizes the fixed texts of an invoice.
type Option func(*layoutOptions)

type layoutOptions struct {
	title  string
	footer string
}

// WithTitle replaces the brand title printed at the top of the first page.
func WithTitle(title string) Option {
	return func(o *layoutOptions) {
		if title != "" {
			o.title = title
		}
	}
}

// WithFooter replaces the closing line.
func WithFooter(footer string) Option {
	return func(o *layoutOptions) {
		if footer != "" {
			o.footer = footer
		}
	}
}

// Result summarizes a finished render.
type Result struct {
	Pages    int
	ItemRows int
	FinalY   float64
}

// Layout renders order onto sink using geo. The caller owns sink and must
// have its first page open.
func Layout(order OrderData, geo PageGeometry, metrics TextMetrics, sink DocumentSink, opts ...Option) Result {
	return NewSession(geo, metrics, sink).RenderInvoice(order, opts...)
}

// RenderInvoice runs the full invoice sequence from the current cursor.
func (s *Session) RenderInvoice(order OrderData, opts ...Option) Result {
	o := layoutOptions{title: DefaultTitle, footer: DefaultFooter}
	for _, opt := range opts {
		opt(&o)
	}

	s.header(order, o.title)
	s.customerBlock(order.Customer)

	s.CheckPageBreak(s.geo.TableHeaderHeight)
	s.tableHeader()
	for _, item := range order.Items {
		s.itemRow(item)
	}

	s.summary(order)
	s.total(order)
	s.footer(o.footer)

	return Result{Pages: s.pages, ItemRows: len(order.Items), FinalY: s.Y}
}

// header draws the title and the invoice number / date row. Both row calls
// start at the same baseline; only the date call's result moves the cursor.
func (s *Session) header(order OrderData, title string) {
	g := s.geo
	_, s.Y = s.LayoutText(title, g.Width/2, s.Y, TextOptions{
		FontSize: g.TitleSize,
		Bold:     true,
		Align:    AlignCenter,
	})

	rowY := s.Y + g.InvoiceRowOffset
	s.LayoutText(fmt.Sprintf("Invoice #%05d", order.ID), g.Margin, rowY, TextOptions{})
	_, s.Y = s.LayoutText(order.Date, g.Width-g.Margin, rowY, TextOptions{Align: AlignRight})
	s.Y += g.HeaderGap
}

func (s *Session) customerBlock(c Customer) {
	s.flowText("Customer: " + c.Name)
	s.flowText("Phone: " + c.Phone)
	s.flowText("Address: " + c.Address)

	if s.geo.RuleAfterCustomer {
		s.Y = s.DrawRule(s.Y, s.geo.ContentWidth())
	}
	s.Y += s.geo.CustomerGap
}

// flowText draws left-aligned body text at the cursor, breaking the page
// between wrapped lines when needed.
func (s *Session) flowText(text string) {
	opts := s.resolve(TextOptions{})
	font := Font{Size: opts.FontSize}
	for _, line := range s.split(text, font, opts.MaxWidth) {
		s.CheckPageBreak(opts.LineHeight)
		s.sink.Text(line, s.geo.Margin, s.Y, font, AlignLeft)
		s.Y += opts.LineHeight
	}
}

func (s *Session) tableHeader() {
	g := s.geo
	bold := Font{Size: g.BodySize, Bold: true}
	desc, qty, unit, total := g.ColumnX()

	s.sink.Text("Description", desc, s.Y, bold, AlignLeft)
	s.sink.Text("Qty", qty+g.Columns.Quantity-g.CellInset, s.Y, bold, AlignRight)
	s.sink.Text("Unit Price", unit+g.Columns.UnitPrice-g.CellInset, s.Y, bold, AlignRight)
	s.sink.Text("Total", total+g.Columns.Total-g.CellInset, s.Y, bold, AlignRight)

	s.Y += g.TableHeaderStep
}

func (s *Session) describe(item LineItem) string {
	text := item.ProductName + " - Size: " + item.ProductSize
	if s.geo.ShowTrackingCode && item.TrackingCode != "" {
		text += " - " + item.TrackingCode
	}
	return text
}

// rowSpace is the height a row can use on a fresh page below the table header.
func (s *Session) rowSpace() float64 {
	return s.geo.Bottom() - s.geo.Margin - s.geo.TableHeaderStep
}

// itemRow keeps a row on one page when it fits there. Taller rows flow line
// by line and repeat the table header on every page they continue on. The
// numeric cells sit on the first description line.
func (s *Session) itemRow(item LineItem) {
	g := s.geo
	body := Font{Size: g.BodySize}
	lines := s.split(s.describe(item), body, g.Columns.Description-g.WrapInset)

	need := max(g.RowMinHeight, float64(len(lines))*g.RowLineStep+g.RowGap)
	if need > s.rowSpace() {
		need = max(g.RowMinHeight, g.RowLineStep)
	}
	if s.CheckPageBreak(need) {
		s.tableHeader()
	}

	desc, qty, unit, total := g.ColumnX()
	s.sink.Text(strconv.Itoa(item.Quantity), qty+g.Columns.Quantity-g.CellInset, s.Y, body, AlignRight)
	s.sink.Text(FormatAmount(g.Currency, item.UnitPrice), unit+g.Columns.UnitPrice-g.CellInset, s.Y, body, AlignRight)
	s.sink.Text(FormatAmount(g.Currency, item.LineTotal()), total+g.Columns.Total-g.CellInset, s.Y, body, AlignRight)

	for i, line := range lines {
		if i > 0 && s.CheckPageBreak(g.RowLineStep) {
			s.tableHeader()
		}
		s.sink.Text(line, desc, s.Y, body, AlignLeft)
		s.Y += g.RowLineStep
	}
	s.Y += g.RowGap
}

type summaryLine struct {
	label string
	value string
}

func (s *Session) summaryLines(order OrderData) []summaryLine {
	cur := s.geo.Currency
	lines := []summaryLine{{"Subtotal:", FormatAmount(cur, order.Subtotal)}}
	if order.DeliveryCharge.IsPositive() {
		lines = append(lines, summaryLine{"Delivery:", FormatAmount(cur, order.DeliveryCharge)})
	}
	if order.Discount.IsPositive() {
		lines = append(lines, summaryLine{"Discount:", FormatDeduction(cur, order.Discount)})
	}
	return lines
}

// summaryStep is the cursor advance of one label/value pair.
func (s *Session) summaryStep() float64 {
	return 2*s.geo.LineHeight(s.geo.BodySize) - s.geo.SummaryBacktrack
}

func (s *Session) summary(order OrderData) {
	g := s.geo
	s.Y += g.SummaryGap

	lines := s.summaryLines(order)
	need := float64(len(lines)+1)*s.summaryStep() + g.TotalGap
	if g.RuleBeforeTotal {
		need += RuleGap
	}
	s.CheckPageBreak(need)

	for _, l := range lines {
		s.summaryPair(l.label, l.value, false)
	}
}

func (s *Session) summaryPair(label, value string, bold bool) {
	valueX := s.geo.Width - s.geo.Margin
	labelX := valueX - s.geo.SummaryLabelWidth

	_, s.Y = s.LayoutText(label, labelX, s.Y, TextOptions{Bold: bold})
	_, s.Y = s.LayoutText(value, valueX, s.Y-s.geo.SummaryBacktrack, TextOptions{Bold: bold, Align: AlignRight})
}

func (s *Session) total(order OrderData) {
	g := s.geo
	if g.RuleBeforeTotal {
		s.Y = s.DrawRule(s.Y, g.ContentWidth())
	}
	s.Y += g.TotalGap
	s.summaryPair("TOTAL:", FormatAmount(g.Currency, order.Total), true)
	s.Y += g.AfterTotalGap
}

func (s *Session) footer(text string) {
	g := s.geo
	s.CheckPageBreak(g.FooterOffset + g.LineHeight(g.BodySize))
	_, s.Y = s.LayoutText(text, g.Width/2, s.Y+g.FooterOffset, TextOptions{Align: AlignCenter})
}

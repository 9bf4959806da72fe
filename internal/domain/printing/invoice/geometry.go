package invoice

// Columns holds the widths of the itemized table columns. The description
// column starts at the left margin; the total column is anchored to the right
// margin.
type Columns struct {
	Description float64
	Quantity    float64
	UnitPrice   float64
	Total       float64
}

// PageGeometry fixes every length the layout uses for one physical page size.
// All values are PDF points.
type PageGeometry struct {
	Name   string
	Width  float64
	Height float64
	Margin float64

	BodySize         float64
	TitleSize        float64
	LineHeightFactor float64

	Columns Columns
	// CellInset pulls right-aligned cell text away from the column edge.
	CellInset float64
	// WrapInset narrows the description wrap width inside its column.
	WrapInset float64

	InvoiceRowOffset float64
	HeaderGap        float64
	CustomerGap      float64

	TableHeaderHeight float64
	TableHeaderStep   float64
	RowMinHeight      float64
	RowLineStep       float64
	RowGap            float64

	SummaryGap        float64
	SummaryLabelWidth float64
	SummaryBacktrack  float64
	TotalGap          float64
	AfterTotalGap     float64
	FooterOffset      float64

	RuleAfterCustomer bool
	RuleBeforeTotal   bool
	ShowTrackingCode  bool

	// Currency is prefixed to every amount, e.g. "Tk " or "৳".
	Currency string
}

// ContentWidth is the page width minus both margins.
func (g PageGeometry) ContentWidth() float64 {
	return g.Width - 2*g.Margin
}

// LineHeight returns the default line height for a font size.
func (g PageGeometry) LineHeight(fontSize float64) float64 {
	return fontSize * g.LineHeightFactor
}

// Bottom is the lowest y a block may reach before a page break.
func (g PageGeometry) Bottom() float64 {
	return g.Height - g.Margin
}

// ColumnX returns the left edge of each table column.
func (g PageGeometry) ColumnX() (desc, qty, unit, total float64) {
	desc = g.Margin
	qty = g.Margin + g.Columns.Description
	unit = qty + g.Columns.Quantity
	total = g.Width - g.Margin - g.Columns.Total
	return desc, qty, unit, total
}

// VariantA is the 4in x 6in shipping label invoice.
var VariantA = PageGeometry{
	Name:   "4x6",
	Width:  288,
	Height: 432,
	Margin: 16,

	BodySize:         8,
	TitleSize:        12,
	LineHeightFactor: 1.4,

	Columns:   Columns{Description: 120, Quantity: 32, UnitPrice: 44, Total: 56},
	CellInset: 2,
	WrapInset: 4,

	InvoiceRowOffset: 4,
	HeaderGap:        8,
	CustomerGap:      10,

	TableHeaderHeight: 20,
	TableHeaderStep:   12,
	RowMinHeight:      24,
	RowLineStep:       10,
	RowGap:            4,

	SummaryGap:        8,
	SummaryLabelWidth: 80,
	SummaryBacktrack:  12,
	TotalGap:          8,
	AfterTotalGap:     12,
	FooterOffset:      6,

	Currency: "Tk ",
}

// VariantB is the 100mm x 70mm compact label invoice. It prints tracking
// codes and separates the customer block and the total with rules.
var VariantB = PageGeometry{
	Name:   "100x70",
	Width:  283.46,
	Height: 198.43,
	Margin: 8,

	BodySize:         6,
	TitleSize:        9,
	LineHeightFactor: 1.2,

	Columns:   Columns{Description: 140, Quantity: 24, UnitPrice: 44, Total: 52},
	CellInset: 2,
	WrapInset: 4,

	InvoiceRowOffset: 3,
	HeaderGap:        5,
	CustomerGap:      4,

	TableHeaderHeight: 14,
	TableHeaderStep:   9,
	RowMinHeight:      16,
	RowLineStep:       7.2,
	RowGap:            3,

	SummaryGap:        5,
	SummaryLabelWidth: 70,
	SummaryBacktrack:  8,
	TotalGap:          4,
	AfterTotalGap:     8,
	FooterOffset:      4,

	RuleAfterCustomer: true,
	RuleBeforeTotal:   true,
	ShowTrackingCode:  true,

	Currency: "৳",
}

package invoice

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMetrics = FixedWidthMetrics{Advance: 0.5}

func sampleOrder() OrderData {
	return OrderData{
		ID:   7,
		Date: "2024-01-01",
		Customer: Customer{
			Name:    "A",
			Phone:   "1",
			Address: "X",
		},
		Items: []LineItem{
			{ProductName: "Widget", ProductSize: "M", Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
		},
		Subtotal:       decimal.NewFromInt(100),
		DeliveryCharge: decimal.Zero,
		Discount:       decimal.Zero,
		Total:          decimal.NewFromInt(100),
	}
}

func render(t *testing.T, order OrderData, geo PageGeometry) (*Recorder, Result) {
	t.Helper()
	rec := NewRecorder()
	res := Layout(order, geo, testMetrics, rec)
	return rec, res
}

func TestLayout_SingleItemScenario(t *testing.T) {
	rec, res := render(t, sampleOrder(), VariantA)

	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 1, rec.PageCount())
	assert.Equal(t, 1, res.ItemRows)

	require.Len(t, rec.Find("Invoice #00007"), 1)
	require.Len(t, rec.Find("2"), 1)
	assert.Equal(t, AlignRight, rec.Find("2")[0].Align)
	assert.Len(t, rec.Find("Tk 50"), 1)
	// line total, subtotal and total
	assert.Len(t, rec.Find("Tk 100"), 3)

	assert.Empty(t, rec.Find("Delivery:"))
	assert.Empty(t, rec.Find("Discount:"))

	total := rec.Find("TOTAL:")
	require.Len(t, total, 1)
	assert.True(t, total[0].Bold)
	assert.Empty(t, rec.Kind(OpLine))
}

func TestLayout_VariantAPositions(t *testing.T) {
	rec, _ := render(t, sampleOrder(), VariantA)

	title := rec.Find(DefaultTitle)
	require.Len(t, title, 1)
	assert.InDelta(t, 144, title[0].X, 1e-9)
	assert.InDelta(t, 16, title[0].Y, 1e-9)
	assert.Equal(t, 12.0, title[0].Size)

	// both header row calls share a baseline
	inv := rec.Find("Invoice #00007")[0]
	date := rec.Find("2024-01-01")[0]
	assert.InDelta(t, 36.8, inv.Y, 1e-9)
	assert.InDelta(t, inv.Y, date.Y, 1e-9)
	assert.InDelta(t, 16, inv.X, 1e-9)
	assert.InDelta(t, 272, date.X, 1e-9)

	assert.InDelta(t, 56, rec.Find("Customer: A")[0].Y, 1e-9)
	assert.InDelta(t, 67.2, rec.Find("Phone: 1")[0].Y, 1e-9)
	assert.InDelta(t, 78.4, rec.Find("Address: X")[0].Y, 1e-9)

	header := rec.Find("Description")[0]
	assert.InDelta(t, 99.6, header.Y, 1e-9)
	assert.InDelta(t, 166, rec.Find("Qty")[0].X, 1e-9)
	assert.InDelta(t, 210, rec.Find("Unit Price")[0].X, 1e-9)
	assert.InDelta(t, 270, rec.Find("Total")[0].X, 1e-9)

	row := rec.Find("Widget - Size: M")[0]
	assert.InDelta(t, 111.6, row.Y, 1e-9)

	sub := rec.Find("Subtotal:")[0]
	assert.InDelta(t, 133.6, sub.Y, 1e-9)
	assert.InDelta(t, 192, sub.X, 1e-9)

	thanks := rec.Find(DefaultFooter)[0]
	assert.InDelta(t, 180.4, thanks.Y, 1e-9)
	assert.Equal(t, AlignCenter, thanks.Align)
}

func TestLayout_EmptyItems(t *testing.T) {
	order := sampleOrder()
	order.Items = nil
	order.Subtotal = decimal.Zero
	order.Total = decimal.Zero

	rec, res := render(t, order, VariantA)

	assert.Equal(t, 0, res.ItemRows)
	assert.Len(t, rec.Find(DefaultTitle), 1)
	assert.Len(t, rec.Find("Description"), 1)
	assert.Len(t, rec.Find("Subtotal:"), 1)
	assert.Len(t, rec.Find(DefaultFooter), 1)
	for _, op := range rec.Kind(OpText) {
		assert.False(t, strings.Contains(op.Text, "Size:"), "unexpected item row %q", op.Text)
	}
}

func TestLayout_ConditionalSummaryRows(t *testing.T) {
	tests := []struct {
		name         string
		delivery     int64
		discount     int64
		wantDelivery bool
		wantDiscount bool
	}{
		{"neither", 0, 0, false, false},
		{"delivery only", 1, 0, true, false},
		{"discount only", 0, 5, false, true},
		{"both", 60, 10, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := sampleOrder()
			order.DeliveryCharge = decimal.NewFromInt(tt.delivery)
			order.Discount = decimal.NewFromInt(tt.discount)

			rec, _ := render(t, order, VariantA)

			assert.Equal(t, tt.wantDelivery, len(rec.Find("Delivery:")) == 1)
			assert.Equal(t, tt.wantDiscount, len(rec.Find("Discount:")) == 1)
			if tt.wantDelivery {
				assert.Len(t, rec.Find(FormatAmount("Tk ", decimal.NewFromInt(tt.delivery))), 1)
			}
			if tt.wantDiscount {
				assert.Len(t, rec.Find(FormatDeduction("Tk ", decimal.NewFromInt(tt.discount))), 1)
			}
		})
	}
}

func TestLayout_LineTotalIsRoundedProduct(t *testing.T) {
	order := sampleOrder()
	order.Items = []LineItem{
		{ProductName: "Cap", ProductSize: "S", Quantity: 3, UnitPrice: decimal.RequireFromString("12.5")},
		{ProductName: "Pin", ProductSize: "XS", Quantity: 2, UnitPrice: decimal.RequireFromString("0.25")},
	}

	rec, _ := render(t, order, VariantA)

	// 12.5 shows as 13, 37.5 as 38
	assert.Len(t, rec.Find("Tk 13"), 1)
	assert.Len(t, rec.Find("Tk 38"), 1)
	// 0.25 shows as 0, 0.5 as 1
	assert.Len(t, rec.Find("Tk 0"), 1)
	assert.Len(t, rec.Find("Tk 1"), 1)
}

func TestLayout_WrappedDescriptionPushesNextRow(t *testing.T) {
	order := sampleOrder()
	order.Items = []LineItem{
		{ProductName: "Extremely long handwoven cotton panjabi with embroidery", ProductSize: "XL", Quantity: 1, UnitPrice: decimal.NewFromInt(900)},
		{ProductName: "Widget", ProductSize: "M", Quantity: 2, UnitPrice: decimal.NewFromInt(50)},
	}

	rec, _ := render(t, order, VariantA)

	var firstRow []DrawOp
	for _, op := range rec.Kind(OpText) {
		if op.X == VariantA.Margin && op.Y >= 111.6 && op.Y < 140 && op.Text != "Widget - Size: M" {
			firstRow = append(firstRow, op)
		}
	}
	require.Greater(t, len(firstRow), 1)
	for i, op := range firstRow {
		assert.InDelta(t, 111.6+float64(i)*10, op.Y, 1e-9)
		assert.LessOrEqual(t, testMetrics.Width(op.Text, Font{Size: 8}), 116.0)
	}

	next := rec.Find("Widget - Size: M")
	require.Len(t, next, 1)
	assert.InDelta(t, 111.6+float64(len(firstRow))*10+4, next[0].Y, 1e-9)
}

func manyItems(n int) []LineItem {
	items := make([]LineItem, n)
	for i := range items {
		items[i] = LineItem{ProductName: "Shirt", ProductSize: "L", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}
	}
	return items
}

func TestLayout_PaginatesLongOrders(t *testing.T) {
	for _, geo := range []PageGeometry{VariantA, VariantB} {
		t.Run(geo.Name, func(t *testing.T) {
			order := sampleOrder()
			order.Items = manyItems(40)

			rec, res := render(t, order, geo)

			require.GreaterOrEqual(t, res.Pages, 2)
			assert.Equal(t, res.Pages, rec.PageCount())
			assert.Len(t, rec.Kind(OpPage), res.Pages-1)

			for _, op := range rec.Kind(OpText) {
				assert.LessOrEqual(t, op.Y, geo.Bottom(), "op %q on page %d overflows", op.Text, op.Page)
			}

			// The table header opens every page the rows continue on.
			headers := rec.Find("Description")
			pagesWithRows := map[int]bool{}
			for _, op := range rec.Find("Shirt - Size: L") {
				pagesWithRows[op.Page] = true
			}
			assert.Len(t, headers, len(pagesWithRows))

			// The cursor resets to the top margin on every new page.
			for i, op := range rec.Ops {
				if op.Kind != OpPage || i+1 >= len(rec.Ops) {
					continue
				}
				first := rec.Ops[i+1]
				want := geo.Margin
				if first.Text == DefaultFooter {
					want += geo.FooterOffset
				}
				assert.InDelta(t, want, first.Y, 1e-9)
			}

			footer := rec.Find(DefaultFooter)
			require.Len(t, footer, 1)
			assert.Equal(t, res.Pages, footer[0].Page)
			assert.Len(t, rec.Find(DefaultTitle), 1)
		})
	}
}

func TestLayout_DescriptionTallerThanPage(t *testing.T) {
	order := sampleOrder()
	order.Items[0].ProductName = strings.Repeat("word ", 600)
	order.Items[0].TrackingCode = "PNJ01M000042"

	rec, res := render(t, order, VariantB)
	geo := VariantB

	require.Greater(t, res.Pages, 2)
	for _, op := range rec.Kind(OpText) {
		assert.LessOrEqual(t, op.Y, geo.Bottom(), "op %q on page %d overflows", op.Text, op.Page)
	}

	var rowLines []DrawOp
	for _, op := range rec.Kind(OpText) {
		if op.X == geo.Margin && strings.HasPrefix(op.Text, "word") {
			rowLines = append(rowLines, op)
		}
	}
	require.NotEmpty(t, rowLines)

	// quantity and amounts stay on the first description line
	qty := rec.Find("2")
	require.Len(t, qty, 1)
	assert.Equal(t, rowLines[0].Page, qty[0].Page)
	assert.InDelta(t, rowLines[0].Y, qty[0].Y, 1e-9)

	// every page the row continues on opens with the table header
	pages := map[int]bool{}
	for _, op := range rowLines {
		pages[op.Page] = true
	}
	headerPages := map[int]bool{}
	for _, op := range rec.Find("Description") {
		headerPages[op.Page] = true
	}
	for page := range pages {
		assert.True(t, headerPages[page], "page %d has no table header", page)
	}
}

func TestLayout_RowThatFitsMovesWhole(t *testing.T) {
	order := sampleOrder()
	order.Items = append(manyItems(20), LineItem{
		ProductName: strings.Repeat("tall ", 60), ProductSize: "M", Quantity: 3, UnitPrice: decimal.NewFromInt(5),
	})

	rec, _ := render(t, order, VariantA)

	var pages []int
	for _, op := range rec.Kind(OpText) {
		if op.X == VariantA.Margin && strings.HasPrefix(op.Text, "tall") {
			pages = append(pages, op.Page)
		}
	}
	require.Greater(t, len(pages), 1)
	for _, p := range pages {
		assert.Equal(t, 2, p)
	}
}

func TestLayout_VariantB(t *testing.T) {
	order := sampleOrder()
	order.Items[0].TrackingCode = "PNJ01M000042"
	order.DeliveryCharge = decimal.NewFromInt(60)
	order.Total = decimal.NewFromInt(160)

	rec, res := render(t, order, VariantB)

	assert.Equal(t, 1, res.Pages)
	assert.Len(t, rec.Find("Widget - Size: M - PNJ01M000042"), 1)
	assert.Len(t, rec.Find("৳160"), 1)
	assert.Len(t, rec.Find("৳60"), 1)

	rules := rec.Kind(OpLine)
	require.Len(t, rules, 2)
	for _, r := range rules {
		assert.InDelta(t, 8, r.X, 1e-9)
		assert.InDelta(t, 8+VariantB.ContentWidth(), r.X2, 1e-9)
		assert.Equal(t, r.Y, r.Y2)
	}
	assert.Less(t, rules[0].Y, rec.Find("Description")[0].Y)
	assert.Less(t, rules[1].Y, rec.Find("TOTAL:")[0].Y)
}

func TestLayout_VariantAOmitsTrackingCode(t *testing.T) {
	order := sampleOrder()
	order.Items[0].TrackingCode = "PNJ01M000042"

	rec, _ := render(t, order, VariantA)

	assert.Len(t, rec.Find("Widget - Size: M"), 1)
}

func TestLayout_Options(t *testing.T) {
	rec := NewRecorder()
	Layout(sampleOrder(), VariantA, testMetrics, rec, WithTitle("SHOP"), WithFooter("Come again"), WithTitle(""))

	assert.Len(t, rec.Find("SHOP"), 1)
	assert.Len(t, rec.Find("Come again"), 1)
	assert.Empty(t, rec.Find(DefaultTitle))
}

func TestLayout_DoesNotMutateInput(t *testing.T) {
	order := sampleOrder()
	before := order.Items[0]

	render(t, order, VariantB)

	assert.Equal(t, before, order.Items[0])
}

func TestColumnsFitContentWidth(t *testing.T) {
	for _, geo := range []PageGeometry{VariantA, VariantB} {
		_, _, _, total := geo.ColumnX()
		_, qty, unit, _ := geo.ColumnX()
		assert.LessOrEqual(t, unit+geo.Columns.UnitPrice, total, geo.Name)
		assert.Less(t, qty, unit, geo.Name)
		assert.InDelta(t, geo.Width-geo.Margin, total+geo.Columns.Total, 1e-9, geo.Name)
	}
}

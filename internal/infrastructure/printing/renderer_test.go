package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/murdhanno/backend/internal/domain/printing"
	"github.com/murdhanno/backend/internal/domain/printing/invoice"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder(items int) invoice.OrderData {
	order := invoice.OrderData{
		ID:   1042,
		Date: "2024-03-09",
		Customer: invoice.Customer{
			Name:    "Karim Uddin",
			Phone:   "01700000000",
			Address: "House 12, Road 5, Dhanmondi, Dhaka",
		},
		DeliveryCharge: decimal.NewFromInt(60),
		Discount:       decimal.NewFromInt(20),
	}
	subtotal := decimal.Zero
	for i := 0; i < items; i++ {
		item := invoice.LineItem{
			ProductName:  fmt.Sprintf("Cotton Panjabi %d", i+1),
			ProductSize:  "XL",
			TrackingCode: fmt.Sprintf("PNJ01XL%05d", i+1),
			Quantity:     2,
			UnitPrice:    decimal.NewFromInt(1250),
		}
		subtotal = subtotal.Add(item.LineTotal())
		order.Items = append(order.Items, item)
	}
	order.Subtotal = subtotal
	order.Total = subtotal.Add(order.DeliveryCharge).Sub(order.Discount)
	return order
}

func TestRenderError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewRenderError(ErrCodeOutputFailed, "failed to encode PDF", cause)

	assert.Equal(t, "failed to encode PDF: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bad input", NewRenderError(ErrCodeInvalidInput, "bad input", nil).Error())
}

func TestInvoiceRenderer_Render(t *testing.T) {
	renderer := NewInvoiceRenderer()

	for _, paper := range printing.AllPaperSizes() {
		t.Run(paper.String(), func(t *testing.T) {
			result, err := renderer.Render(context.Background(), &RenderRequest{
				Order:     sampleOrder(1),
				PaperSize: paper,
			})
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(result.PDFData, []byte("%PDF-")))
			assert.Equal(t, 1, result.PageCount)
			assert.Positive(t, result.RenderDuration)
		})
	}
}

func TestInvoiceRenderer_RenderPaginates(t *testing.T) {
	renderer := NewInvoiceRenderer()
	req := &RenderRequest{Order: sampleOrder(40), PaperSize: printing.PaperSizeLabel100x70}

	result, err := renderer.Render(context.Background(), req)
	require.NoError(t, err)
	assert.Greater(t, result.PageCount, 1)

	// the PDF and the preview agree on page count
	preview, err := renderer.Preview(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, result.PageCount, preview.PageCount)
	assert.Equal(t, 40, preview.ItemRows)
}

func TestInvoiceRenderer_Copies(t *testing.T) {
	renderer := NewInvoiceRenderer()
	order := sampleOrder(1)

	single, err := renderer.Render(context.Background(), &RenderRequest{Order: order, PaperSize: printing.PaperSizeLabel4x6})
	require.NoError(t, err)
	triple, err := renderer.Render(context.Background(), &RenderRequest{Order: order, PaperSize: printing.PaperSizeLabel4x6, Copies: 3})
	require.NoError(t, err)

	assert.Equal(t, 3*single.PageCount, triple.PageCount)
}

func TestInvoiceRenderer_InvalidRequests(t *testing.T) {
	renderer := NewInvoiceRenderer()

	tests := []struct {
		name string
		req  *RenderRequest
	}{
		{"nil request", nil},
		{"unknown paper", &RenderRequest{Order: sampleOrder(1), PaperSize: "A4"}},
		{"too many copies", &RenderRequest{Order: sampleOrder(1), PaperSize: printing.PaperSizeLabel4x6, Copies: MaxCopies + 1}},
		{"negative copies", &RenderRequest{Order: sampleOrder(1), PaperSize: printing.PaperSizeLabel4x6, Copies: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := renderer.Render(context.Background(), tt.req)
			var renderErr *RenderError
			require.True(t, errors.As(err, &renderErr))
			assert.Equal(t, ErrCodeInvalidInput, renderErr.Code)
		})
	}

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := renderer.Render(ctx, &RenderRequest{Order: sampleOrder(1), PaperSize: printing.PaperSizeLabel4x6})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestInvoiceRenderer_PreviewTexts(t *testing.T) {
	renderer := NewInvoiceRenderer(WithDefaultTexts("DEFAULT BRAND", "See you soon"))

	preview, err := renderer.Preview(context.Background(), &RenderRequest{
		Order:     sampleOrder(1),
		PaperSize: printing.PaperSizeLabel4x6,
	})
	require.NoError(t, err)
	assert.Equal(t, "4x6", preview.Geometry.Name)

	var texts []string
	for _, op := range preview.Ops {
		if op.Kind == invoice.OpText {
			texts = append(texts, op.Text)
		}
	}
	joined := strings.Join(texts, "\n")
	assert.Contains(t, joined, "DEFAULT BRAND")
	assert.Contains(t, joined, "See you soon")

	preview, err = renderer.Preview(context.Background(), &RenderRequest{
		Order:     sampleOrder(1),
		PaperSize: printing.PaperSizeLabel4x6,
		Title:     "REQUEST BRAND",
	})
	require.NoError(t, err)
	require.NotEmpty(t, preview.Ops)
	assert.Equal(t, "REQUEST BRAND", preview.Ops[0].Text)
}

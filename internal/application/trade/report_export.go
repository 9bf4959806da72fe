package trade

import (
	"bytes"
	"context"
	"fmt"

	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/domain/trade"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the MIME type of exported reports
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	sheetSummary  = "Summary"
	sheetProducts = "Top Products"
	sheetOrders   = "Orders"
)

// ExportSalesReport builds the report and writes it as an XLSX workbook with
// summary, top products and order sheets. It returns the file name and bytes.
func (s *OrderService) ExportSalesReport(ctx context.Context, actor shared.Actor, req SalesReportRequest) (string, []byte, error) {
	report, err := s.SalesReport(ctx, actor, req)
	if err != nil {
		return "", nil, err
	}
	data, err := WriteSalesReportXLSX(report)
	if err != nil {
		return "", nil, err
	}
	name := fmt.Sprintf("sales-report-%s-%s.xlsx", report.Start.Format(dateLayout), report.End.Format(dateLayout))
	return name, data, nil
}

// WriteSalesReportXLSX renders a report into workbook bytes
func WriteSalesReportXLSX(report trade.SalesReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetProducts); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetOrders); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	revenue, _ := report.TotalRevenue.Float64()
	summary := [][]any{
		{"Start date", report.Start.Format(dateLayout)},
		{"End date", report.End.Format(dateLayout)},
		{"Total orders", report.TotalOrders},
		{"Completed orders", report.CompletedOrders},
		{"Total revenue", revenue},
	}
	if err := writeRows(f, sheetSummary, summary); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetSummary, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return nil, err
	}

	products := [][]any{{"Product", "Quantity", "Revenue"}}
	for _, p := range report.TopProducts {
		r, _ := p.Revenue.Float64()
		products = append(products, []any{p.Name, p.Quantity, r})
	}
	if err := writeRows(f, sheetProducts, products); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetProducts, "A1", "C1", bold); err != nil {
		return nil, err
	}

	orders := [][]any{{"Invoice #", "Date", "Customer", "Phone", "Items", "Total", "Status"}}
	for i := range report.Orders {
		o := &report.Orders[i]
		total, _ := o.TotalAmount.Float64()
		orders = append(orders, []any{
			o.Number,
			o.CreatedAt.Format(dateLayout),
			o.Customer.Name,
			o.Customer.Phone,
			o.ItemCount(),
			total,
			o.Status.String(),
		})
	}
	if err := writeRows(f, sheetOrders, orders); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheetOrders, "A1", "G1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetOrders, "C", "C", 28); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

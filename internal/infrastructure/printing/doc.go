// Package printing provides infrastructure implementations for invoice PDF
// generation and print job file storage.
//
// This package contains:
// - FpdfDocument, the fpdf backed TextMetrics and DocumentSink for the invoice layout engine
// - InvoiceRenderer, which runs the layout engine and encodes the PDF
// - PDFStorage interface for storing and managing generated PDF files
// - FileSystemStorage implementation for local file system storage
//
// Example usage:
//
//	renderer := NewInvoiceRenderer(WithDefaultTexts("MURDHANNO", "Thank you!"))
//	result, err := renderer.Render(ctx, &RenderRequest{
//	    Order:     data,
//	    PaperSize: printing.PaperSizeLabel4x6,
//	})
//	if err != nil {
//	    return err
//	}
//
//	fmt.Printf("Generated PDF: %d bytes, %d pages\n", len(result.PDFData), result.PageCount)
package printing

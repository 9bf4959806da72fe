package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/murdhanno/backend/internal/domain/printing"
	"github.com/murdhanno/backend/internal/domain/printing/invoice"
	"github.com/murdhanno/backend/internal/infrastructure/logger"
	infra "github.com/murdhanno/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

func main() {
	var (
		inPath   string
		outPath  string
		paper    string
		copies   int
		title    string
		footer   string
		logLevel string
	)
	flag.StringVar(&inPath, "in", "-", "Order JSON file, - for stdin")
	flag.StringVar(&outPath, "out", "", "Output PDF path (default: invoice-<id>.pdf)")
	flag.StringVar(&paper, "paper", string(printing.PaperSizeLabel4x6), "Paper size (LABEL_4X6, LABEL_100X70)")
	flag.IntVar(&copies, "copies", 1, "Number of copies, each on a fresh page")
	flag.StringVar(&title, "title", "", "Header title override")
	flag.StringVar(&footer, "footer", "", "Footer text override")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	order, err := readOrder(inPath)
	if err != nil {
		log.Fatal("Failed to read order", zap.String("in", inPath), zap.Error(err))
	}

	paperSize, err := printing.ParsePaperSize(paper, printing.PaperSizeLabel4x6)
	if err != nil {
		log.Fatal("Invalid paper size", zap.String("paper", paper), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	renderer := infra.NewInvoiceRenderer(infra.WithRendererLogger(log))
	result, err := renderer.Render(ctx, &infra.RenderRequest{
		Order:     *order,
		PaperSize: paperSize,
		Copies:    copies,
		Title:     title,
		Footer:    footer,
	})
	if err != nil {
		log.Fatal("Failed to render invoice", zap.Int64("order_id", order.ID), zap.Error(err))
	}

	if outPath == "" {
		outPath = fmt.Sprintf("invoice-%d.pdf", order.ID)
	}
	if err := os.WriteFile(outPath, result.PDFData, 0o644); err != nil {
		log.Fatal("Failed to write PDF", zap.String("out", outPath), zap.Error(err))
	}

	log.Info("Invoice rendered",
		zap.Int64("order_id", order.ID),
		zap.String("paper_size", paperSize.String()),
		zap.Int("pages", result.PageCount),
		zap.Int("bytes", len(result.PDFData)),
		zap.Duration("duration", result.RenderDuration),
		zap.String("out", outPath),
	)
}

func readOrder(path string) (*invoice.OrderData, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var order invoice.OrderData
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

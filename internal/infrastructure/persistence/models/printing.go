package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/printing"
)

// PrintJobModel is the GORM model for print_jobs table
type PrintJobModel struct {
	AggregateModel
	DocumentType string     `gorm:"column:document_type;type:varchar(50);not null"`
	OrderID      uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index"`
	OrderNumber  int64      `gorm:"column:order_number;not null"`
	PaperSize    string     `gorm:"column:paper_size;type:varchar(20);not null"`
	Status       string     `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Copies       int        `gorm:"not null;default:1"`
	PageCount    int        `gorm:"column:page_count;not null;default:0"`
	PDFPath      string     `gorm:"column:pdf_path;type:text"`
	PDFURL       string     `gorm:"column:pdf_url;type:text"`
	FileSize     int64      `gorm:"column:file_size;not null;default:0"`
	ErrorMessage string     `gorm:"column:error_message;type:text"`
	RequestedBy  uuid.UUID  `gorm:"column:requested_by;type:uuid;index"`
	PrintedAt    *time.Time `gorm:"column:printed_at"`
}

func (PrintJobModel) TableName() string {
	return "print_jobs"
}

func (m *PrintJobModel) ToDomain() *printing.PrintJob {
	return &printing.PrintJob{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		DocumentType:      printing.DocType(m.DocumentType),
		OrderID:           m.OrderID,
		OrderNumber:       m.OrderNumber,
		PaperSize:         printing.PaperSize(m.PaperSize),
		Status:            printing.JobStatus(m.Status),
		Copies:            m.Copies,
		PageCount:         m.PageCount,
		PDFPath:           m.PDFPath,
		PDFURL:            m.PDFURL,
		FileSize:          m.FileSize,
		ErrorMessage:      m.ErrorMessage,
		RequestedBy:       m.RequestedBy,
		PrintedAt:         m.PrintedAt,
	}
}

func PrintJobModelFromDomain(j *printing.PrintJob) *PrintJobModel {
	m := &PrintJobModel{
		DocumentType: string(j.DocumentType),
		OrderID:      j.OrderID,
		OrderNumber:  j.OrderNumber,
		PaperSize:    string(j.PaperSize),
		Status:       string(j.Status),
		Copies:       j.Copies,
		PageCount:    j.PageCount,
		PDFPath:      j.PDFPath,
		PDFURL:       j.PDFURL,
		FileSize:     j.FileSize,
		ErrorMessage: j.ErrorMessage,
		RequestedBy:  j.RequestedBy,
		PrintedAt:    j.PrintedAt,
	}
	m.FromDomainAggregateRoot(j.BaseAggregateRoot)
	return m
}

package printing

import "github.com/murdhanno/backend/internal/domain/shared"

var (
	ErrInvalidPaperSize = shared.NewDomainError("INVALID_PAPER_SIZE", "Paper size must be LABEL_4X6 or LABEL_100X70")
	ErrInvalidCopies    = shared.NewDomainError("INVALID_COPIES", "Number of copies must be between 1 and 100")
	ErrJobNotFound      = shared.NewDomainError("NOT_FOUND", "Print job not found")
	ErrPDFNotReady      = shared.NewDomainError("PDF_NOT_READY", "Print job has no rendered PDF yet")
)

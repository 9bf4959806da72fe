package persistence

import (
	"strings"

	"github.com/murdhanno/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Columns a list endpoint may sort by. Names are matched exactly so nothing
// a client sends reaches ORDER BY unless it is listed here.
var (
	OrderSortFields    = sortable("created_at", "updated_at", "number", "customer_name", "total_amount", "status")
	UserSortFields     = sortable("created_at", "username", "role", "last_login_at")
	PrintJobSortFields = sortable("created_at", "updated_at", "order_number", "status", "printed_at")
	ProductSortFields  = sortable("created_at", "updated_at", "name", "code", "size", "quantity", "price")
	CatalogSortFields  = sortable("created_at", "name")
)

func sortable(columns ...string) map[string]bool {
	set := make(map[string]bool, len(columns))
	for _, c := range columns {
		set[c] = true
	}
	return set
}

// ValidateSortOrder is ASC only when asked for, DESC otherwise
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns the trimmed field if allowed lists it, else def
func ValidateSortField(field string, allowed map[string]bool, def string) string {
	if field = strings.TrimSpace(field); allowed[field] {
		return field
	}
	return def
}

// applySortAndPage sorts by a whitelisted column with created_at DESC as the
// tiebreak, and pages only when both Page and PageSize are set.
func applySortAndPage(query *gorm.DB, filter shared.Filter, allowed map[string]bool) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, "created_at")
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if field != "created_at" {
		query = query.Order("created_at DESC")
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

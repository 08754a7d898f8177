package persistence

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/autobargain/backend/internal/domain/shared"
)

// ForBargain restricts a query to one bargain's rows. uuid.Nil leaves the
// query unscoped, which batch jobs use to sweep every bargain.
func ForBargain(bargainID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if bargainID == uuid.Nil {
			return db
		}
		return db.Where("bargain_id = ?", bargainID)
	}
}

// Paginate applies the filter's page window and a whitelisted ordering
func Paginate(filter shared.Filter, allowedFields map[string]bool, defaultField string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field := ValidateSortField(filter.OrderBy, allowedFields, defaultField)
		return db.Order(field + " " + ValidateSortOrder(filter.OrderDir)).
			Offset(filter.Offset()).
			Limit(filter.Limit())
	}
}

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// TransactionSortFields contains allowed sort fields for purchases and sales
var TransactionSortFields = map[string]bool{
	"created_at":       true,
	"transaction_date": true,
	"bargain_price":    true,
	"net_amount":       true,
	"pending_amount":   true,
	"status":           true,
}

// CommissionSortFields contains allowed sort fields for commission records
var CommissionSortFields = map[string]bool{
	"created_at":        true,
	"transaction_date":  true,
	"commission_amount": true,
	"original_amount":   true,
}

package cli

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// These commands need the database; the cases here fail on their flags
// before a connection is attempted.
func TestDatabaseCommands_RejectBadFlags(t *testing.T) {
	bargainID := uuid.NewString()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bargain id", []string{"vehicles", "status", "--bargain", "LHR-01", "--vehicle", uuid.NewString(), "--status", "reserved"}, "--bargain"},
		{"vehicle id", []string{"vehicles", "status", "--bargain", bargainID, "--vehicle", "7", "--status", "reserved"}, "--vehicle"},
		{"customer bargain", []string{"customers", "register", "--bargain", "x", "--name", "Usman", "--type", "buyer"}, "--bargain"},
		{"deactivate bargain", []string{"bargains", "deactivate", "--bargain", "x"}, "--bargain"},
		{"resolve kind", []string{"commission", "resolve", "--bargain", bargainID, "--kind", "lease"}, "--kind"},
		{"list bargain", []string{"transactions", "list", "--bargain", "all"}, "--bargain"},
		{"preview price", []string{"transactions", "preview", "--bargain", bargainID, "--price", "lots"}, "--price"},
		{"preview date", []string{"transactions", "preview", "--bargain", bargainID, "--price", "2500000", "--date", "15/01/2024"}, "invalid date"},
		{"pay installment id", []string{"installments", "pay", "--bargain", bargainID, "--installment", "first", "--amount", "500000"}, "--installment"},
		{"pay amount", []string{"installments", "pay", "--bargain", bargainID, "--installment", uuid.NewString(), "--amount", "half"}, "--amount"},
		{"overdue bargain", []string{"installments", "overdue", "--bargain", "x"}, "--bargain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

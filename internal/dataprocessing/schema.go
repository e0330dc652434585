package dataprocessing

import (
	"fmt"
	"strings"

	"qoedash/pkg/contracts/domain"
)

// MissingColumnsError is the fatal schema error. Columns are listed in the
// order they are declared in RequiredColumns.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	quoted := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return fmt.Sprintf("missing required columns: %s", strings.Join(quoted, ", "))
}

// First returns the first absent column
func (e *MissingColumnsError) First() string {
	if len(e.Columns) == 0 {
		return ""
	}
	return e.Columns[0]
}

// ValidateSchema checks the header against RequiredColumns
func ValidateSchema(columns []string) error {
	return ValidateColumns(columns, RequiredColumns)
}

// ValidateColumns returns a *MissingColumnsError naming every required column
// absent from columns, or nil.
func ValidateColumns(columns, required []string) error {
	var missing []string
	for _, name := range required {
		if !hasColumn(columns, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// SchemaWarnings reports the optional columns that are absent
func SchemaWarnings(columns []string) []domain.Warning {
	var warnings []domain.Warning
	if !hasColumn(columns, ColumnRegion) {
		warnings = append(warnings, domain.Warning{
			Code:    domain.WarningRegionColumnMissing,
			Column:  ColumnRegion,
			Message: fmt.Sprintf("column %q not found, region filter is disabled", ColumnRegion),
		})
	}
	for _, op := range domain.KnownOperators {
		if !hasColumn(columns, string(op)) {
			warnings = append(warnings, domain.Warning{
				Code:    domain.WarningOperatorColumnMissing,
				Column:  string(op),
				Message: fmt.Sprintf("column %q not found, operator %s is excluded", op, op),
			})
		}
	}
	return warnings
}

// PresentOperators returns the known operators that have a column, in
// KnownOperators order.
func PresentOperators(columns []string) []domain.Operator {
	ops := make([]domain.Operator, 0, len(domain.KnownOperators))
	for _, op := range domain.KnownOperators {
		if hasColumn(columns, string(op)) {
			ops = append(ops, op)
		}
	}
	return ops
}

package internal

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Column describes one column as the schema validators see it.
type Column struct {
	DataType string
	Nullable bool
}

// CompareColumns reports every expected column that is missing from actual or differs in type
// or nullability. Extra columns in actual are allowed. Data types compare case-insensitively.
func CompareColumns(table string, expected, actual map[string]Column) error {
	var missing, mismatched []string

	for name, want := range expected {
		got, ok := actual[name]
		if !ok {
			missing = append(missing, name)
			continue
		}

		if !strings.EqualFold(got.DataType, want.DataType) {
			mismatched = append(mismatched, fmt.Sprintf("%s: expected %s, got %s", name, want.DataType, strings.ToLower(got.DataType)))
		}

		if got.Nullable != want.Nullable {
			mismatched = append(mismatched, fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", name, want.Nullable, got.Nullable))
		}
	}

	if len(missing) == 0 && len(mismatched) == 0 {
		return nil
	}

	slices.Sort(missing)
	slices.Sort(mismatched)

	var b strings.Builder
	fmt.Fprintf(&b, "table %s schema validation failed:\n", table)
	if len(missing) > 0 {
		fmt.Fprintf(&b, "  missing columns: %s\n", strings.Join(missing, ", "))
	}
	if len(mismatched) > 0 {
		b.WriteString("  mismatched columns:\n")
		for _, msg := range mismatched {
			fmt.Fprintf(&b, "    - %s\n", msg)
		}
	}
	return errors.New(b.String())
}

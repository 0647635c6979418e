package service

import (
	"fmt"
	"sort"
	"strings"

	domainerrors "github.com/untdf/catalog/internal/errors"
)

// describe flattens a validation error's field details into one line, e.g.
// "validation failed: price must be greater than or equal to 0".
func describe(err error) string {
	var catalogErr *domainerrors.Error
	if !domainerrors.As(err, &catalogErr) {
		return err.Error()
	}
	fields, ok := catalogErr.Details.(map[string]string)
	if !ok || len(fields) == 0 {
		return catalogErr.Error()
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s %s", name, fields[name])
	}
	return catalogErr.Message + ": " + strings.Join(parts, ", ")
}

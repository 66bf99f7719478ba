package validator

import (
	"strings"

	"github.com/aretw0/hsn/pkg/domain"
)

// Validate classifies every item of in against table.
//
// An empty table short-circuits each item to DATASTORE_UNAVAILABLE. A scalar
// input yields a single INVALID_INPUT_TYPE record.
func Validate(table *domain.Table, in domain.Input) []domain.Result {
	if table.Empty() {
		return unavailable(in)
	}
	if in.Kind == domain.InputScalar {
		return []domain.Result{domain.InvalidInputTypeResult(in.Raw)}
	}

	results := make([]domain.Result, len(in.Items))
	for i, item := range in.Items {
		results[i] = validateItem(table, item)
	}
	return results
}

// ValidateCodes is a convenience wrapper for typed Go callers.
func ValidateCodes(table *domain.Table, codes ...string) []domain.Result {
	return Validate(table, domain.Strings(codes...))
}

func unavailable(in domain.Input) []domain.Result {
	if in.Kind == domain.InputScalar {
		return []domain.Result{domain.DatastoreUnavailableResult(in.Raw)}
	}
	results := make([]domain.Result, len(in.Items))
	for i, item := range in.Items {
		results[i] = domain.DatastoreUnavailableResult(item.Raw)
	}
	return results
}

func validateItem(table *domain.Table, item domain.Item) domain.Result {
	if item.Kind != domain.ItemString {
		return domain.InvalidItemTypeResult(item.Raw)
	}

	code := strings.TrimSpace(item.Text)
	if !WellFormed(code) {
		return domain.InvalidFormatResult(item.Text)
	}

	if desc, ok := lookup(table, code); ok {
		return domain.ValidResult(item.Text, desc)
	}

	if len(code) == 6 || len(code) == 8 {
		parent := code[:len(code)-2]
		if desc, ok := lookup(table, parent); ok {
			return domain.ParentCategoryResult(item.Text, parent, desc)
		}
	}

	if len(code) >= 4 {
		chapter := code[:2]
		if desc, ok := lookup(table, chapter); ok {
			return domain.ParentChapterResult(item.Text, chapter, desc)
		}
	}

	return domain.NotFoundResult(item.Text)
}

// lookup treats a code stored with a blank description as absent.
func lookup(table *domain.Table, code string) (string, bool) {
	desc, ok := table.Lookup(code)
	return desc, ok && desc != ""
}

// WellFormed reports whether an already trimmed code has a valid HSN shape:
// decimal digits only, 2, 4, 6 or 8 of them.
func WellFormed(code string) bool {
	if !domain.IsDigits(code) {
		return false
	}
	for _, n := range domain.ValidLengths {
		if len(code) == n {
			return true
		}
	}
	return false
}

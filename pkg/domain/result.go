package domain

import "fmt"

// Result is the outcome of validating a single input item.
// It uses "mapstructure" tags so results stored in session state can be
// decoded back after a JSON round-trip.
type Result struct {
	Input       string     `json:"input_hsn" mapstructure:"input_hsn"`
	Valid       bool       `json:"is_valid" mapstructure:"is_valid"`
	Description string     `json:"description,omitempty" mapstructure:"description"`
	ParentCode  string     `json:"parent_code,omitempty" mapstructure:"parent_code"`
	Reason      ReasonCode `json:"reason_code" mapstructure:"reason_code"`
	Message     string     `json:"message" mapstructure:"message"`
}

const (
	msgValid                = "HSN code is valid."
	msgInvalidItemType      = "Each HSN code must be a string."
	msgInvalidFormat        = "HSN code must be numeric and 2, 4, 6, or 8 digits long."
	msgNotFound             = "HSN code not found in master data, and no valid parent category was found."
	msgDatastoreUnavailable = "The HSN master data failed to load at startup. Cannot perform validation."
	msgInvalidInputType     = "Input must be a list of strings."
)

// ValidResult reports an exact match.
func ValidResult(input, description string) Result {
	return Result{Input: input, Valid: true, Description: description, Reason: ReasonValid, Message: msgValid}
}

// InvalidItemTypeResult reports a non-string item inside a sequence.
func InvalidItemTypeResult(input string) Result {
	return Result{Input: input, Reason: ReasonInvalidItemType, Message: msgInvalidItemType}
}

// InvalidFormatResult reports a code that is not 2, 4, 6 or 8 decimal digits.
func InvalidFormatResult(input string) Result {
	return Result{Input: input, Reason: ReasonInvalidFormat, Message: msgInvalidFormat}
}

// ParentCategoryResult reports a missing code whose next coarser level exists.
func ParentCategoryResult(input, parent, description string) Result {
	return Result{
		Input:       input,
		Description: description,
		ParentCode:  parent,
		Reason:      ReasonNotFoundButParentExists,
		Message:     fmt.Sprintf("HSN Code not found, but its parent category '%s' (%s) is valid.", parent, description),
	}
}

// ParentChapterResult reports a missing code whose two-digit chapter exists.
func ParentChapterResult(input, chapter, description string) Result {
	return Result{
		Input:       input,
		Description: description,
		ParentCode:  chapter,
		Reason:      ReasonNotFoundButParentExists,
		Message:     fmt.Sprintf("HSN Code not found, but its parent chapter '%s' (%s) is valid.", chapter, description),
	}
}

// NotFoundResult reports a well-formed code without any known ancestor.
func NotFoundResult(input string) Result {
	return Result{Input: input, Reason: ReasonNotFound, Message: msgNotFound}
}

// DatastoreUnavailableResult is emitted for every input when the table is empty.
func DatastoreUnavailableResult(input string) Result {
	return Result{Input: input, Reason: ReasonDatastoreUnavailable, Message: msgDatastoreUnavailable}
}

// InvalidInputTypeResult is emitted once when the input is not a sequence.
func InvalidInputTypeResult(input string) Result {
	return Result{Input: input, Reason: ReasonInvalidInputType, Message: msgInvalidInputType}
}

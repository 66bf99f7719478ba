package domain

// ReasonCode is the stable identifier attached to every validation result.
// Values are part of the tool contract and must not change between releases.
type ReasonCode string

const (
	ReasonValid                   ReasonCode = "VALID"
	ReasonInvalidItemType         ReasonCode = "INVALID_ITEM_TYPE"
	ReasonInvalidFormat           ReasonCode = "INVALID_FORMAT"
	ReasonNotFoundButParentExists ReasonCode = "NOT_FOUND_BUT_PARENT_EXISTS"
	ReasonNotFound                ReasonCode = "NOT_FOUND"
	ReasonDatastoreUnavailable    ReasonCode = "DATASTORE_UNAVAILABLE"
	ReasonInvalidInputType        ReasonCode = "INVALID_INPUT_TYPE"
)

// ReasonCodes lists every known reason in a stable order.
var ReasonCodes = []ReasonCode{
	ReasonValid,
	ReasonInvalidItemType,
	ReasonInvalidFormat,
	ReasonNotFoundButParentExists,
	ReasonNotFound,
	ReasonDatastoreUnavailable,
	ReasonInvalidInputType,
}

// Known reports whether r belongs to the enumeration.
func (r ReasonCode) Known() bool {
	for _, c := range ReasonCodes {
		if c == r {
			return true
		}
	}
	return false
}

func (r ReasonCode) String() string { return string(r) }

package domain

import (
	"encoding/json"
	"fmt"
)

// InputKind tells whether the caller handed over a sequence of codes.
type InputKind int

const (
	InputSequence InputKind = iota
	InputScalar
)

// ItemKind tells whether a sequence element was a string.
type ItemKind int

const (
	ItemString ItemKind = iota
	ItemOther
)

// Item is one element of a sequence input.
// Text holds the untrimmed string when Kind is ItemString; Raw always holds a
// printable rendering of the original value.
type Item struct {
	Kind ItemKind
	Text string
	Raw  string
}

// Input is the typed contract accepted by the validator. Untyped payloads
// (JSON, MCP arguments) are converted at the boundary with InputFromAny.
type Input struct {
	Kind  InputKind
	Items []Item
	Raw   string
}

// Strings builds a sequence input from Go strings.
func Strings(codes ...string) Input {
	items := make([]Item, len(codes))
	for i, c := range codes {
		items[i] = Item{Kind: ItemString, Text: c, Raw: c}
	}
	return Input{Kind: InputSequence, Items: items, Raw: render(codes)}
}

// InputFromAny classifies a decoded payload. Slices become sequences whose
// non-string elements are tagged ItemOther; everything else is a scalar.
func InputFromAny(v any) Input {
	switch vv := v.(type) {
	case Input:
		return vv
	case []string:
		return Strings(vv...)
	case []any:
		items := make([]Item, len(vv))
		for i, e := range vv {
			if s, ok := e.(string); ok {
				items[i] = Item{Kind: ItemString, Text: s, Raw: s}
				continue
			}
			items[i] = Item{Kind: ItemOther, Raw: render(e)}
		}
		return Input{Kind: InputSequence, Items: items, Raw: render(vv)}
	default:
		return Input{Kind: InputScalar, Raw: render(v)}
	}
}

// Len returns the number of results a validation of this input produces.
func (in Input) Len() int {
	if in.Kind == InputScalar {
		return 1
	}
	return len(in.Items)
}

// Texts returns the string items in order, skipping anything else.
func (in Input) Texts() []string {
	out := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Kind == ItemString {
			out = append(out, it.Text)
		}
	}
	return out
}

func render(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

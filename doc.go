/*
Package hsn validates Harmonized System of Nomenclature (HSN) tariff codes
against a reference table and exposes the check as an agent tool.

# Concept

An HSN code is 2, 4, 6 or 8 decimal digits: chapter, heading, subheading and
tariff item. The reference table maps every known code to its description and
is read once from an Excel, CSV or SQLite master file. Each validation returns
one record per input code, in input order, with a stable reason code:

  - VALID: the code is in the table.
  - INVALID_FORMAT: not digits, or the wrong length.
  - NOT_FOUND_BUT_PARENT_EXISTS: unknown code whose heading or chapter is known.
  - NOT_FOUND: unknown code and unknown parents.
  - INVALID_ITEM_TYPE: a non-string element in the input list.
  - INVALID_INPUT_TYPE: the input was not a list at all.
  - DATASTORE_UNAVAILABLE: the table could not be loaded.

Around the validator the Assistant adds guardrails (blocked keywords in chat
messages, blocked code prefixes in tool calls), per-session state with an
in-memory or Redis store, lifecycle hooks for metrics, and hot reload of the
table. The same Assistant backs the MCP server, the HTTP API and the CLI.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/hsn"
		"github.com/aretw0/hsn/pkg/domain"
	)

	func main() {
		a, err := hsn.New("HSN_Master_Data.xlsx")
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		for _, r := range a.Validate(ctx, domain.Strings("0101", "847130", "12")) {
			fmt.Println(r.Input, r.Reason, r.Message)
		}
	}
*/
package hsn

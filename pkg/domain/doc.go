/*
Package domain contains the core domain models for the HSN assistant.

It defines the reference table, the typed validation input, the per-code
result records and the session state shared by every adapter. This package is
kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - Table: Immutable mapping from a normalized HSN code to its description.
  - Input: Tagged variant describing what the caller handed to the validator.
  - Result: One validation outcome per input item, with a stable ReasonCode.
  - Session: Per-conversation state persisted by a SessionStore.
*/
package domain

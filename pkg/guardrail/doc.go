// Package guardrail screens traffic before it reaches the model or the
// validation tool: free-text sanitizing, blocked keywords, and blocked code
// prefixes.
package guardrail

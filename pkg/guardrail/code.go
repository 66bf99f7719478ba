package guardrail

import (
	"fmt"
	"strings"

	"github.com/aretw0/hsn/pkg/domain"
)

// DefaultBlockedPrefixes are code prefixes that may never reach the validator.
var DefaultBlockedPrefixes = []string{"12345"}

// CodeVerdict is returned instead of tool results when some codes were blocked.
type CodeVerdict struct {
	UnblockedCodes []string `json:"unblocked_codes"`
	BlockedCodes   []string `json:"blocked_codes"`
	LLMMessage     string   `json:"llm_message"`
	NextAction     string   `json:"next_action"`
}

// CodeGuard filters tool inputs by prefix.
type CodeGuard struct {
	prefixes []string
}

// NewCodeGuard creates a guard. Without prefixes DefaultBlockedPrefixes apply.
func NewCodeGuard(prefixes ...string) *CodeGuard {
	g := &CodeGuard{}
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			g.prefixes = append(g.prefixes, p)
		}
	}
	if len(g.prefixes) == 0 {
		g.prefixes = append([]string(nil), DefaultBlockedPrefixes...)
	}
	return g
}

// Prefixes returns the configured prefixes.
func (g *CodeGuard) Prefixes() []string {
	return append([]string(nil), g.prefixes...)
}

// Check splits the input into blocked and unblocked codes. It returns nil when
// the call may proceed unchanged, which is always the case for scalar or empty
// inputs. Non-string items are never blocked and are carried in Filtered so a
// retry still reports them as INVALID_ITEM_TYPE.
func (g *CodeGuard) Check(in domain.Input) *CodeCheck {
	if in.Kind != domain.InputSequence || len(in.Items) == 0 {
		return nil
	}

	check := &CodeCheck{}
	var unblockedText []string
	for _, it := range in.Items {
		if it.Kind != domain.ItemString {
			check.Filtered = append(check.Filtered, it)
			continue
		}
		code := strings.TrimSpace(it.Text)
		if g.blocked(code) {
			check.Verdict.BlockedCodes = append(check.Verdict.BlockedCodes, code)
			continue
		}
		unblockedText = append(unblockedText, code)
		check.Filtered = append(check.Filtered, domain.Item{Kind: domain.ItemString, Text: code, Raw: code})
	}
	if len(check.Verdict.BlockedCodes) == 0 {
		return nil
	}

	if unblockedText == nil {
		unblockedText = []string{}
	}
	check.Verdict.UnblockedCodes = unblockedText
	check.Verdict.NextAction = domain.NextActionRetryFiltered
	check.Verdict.LLMMessage = fmt.Sprintf(
		"Some HSN codes were blocked due to policy restrictions and have been removed from the tool call.\n\n"+
			" Blocked codes: %s\n"+
			" Unblocked codes: %s\n"+
			"Please run the tool call using only the unblocked codes to check if they exist in the master data and return their corresponding descriptions to user.",
		quoteList(check.Verdict.BlockedCodes), quoteList(unblockedText))
	return check
}

func (g *CodeGuard) blocked(code string) bool {
	for _, p := range g.prefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

// CodeCheck carries a block verdict plus the filtered input to retry with.
type CodeCheck struct {
	Verdict  CodeVerdict
	Filtered []domain.Item
}

// Retry returns the filtered input for the follow-up tool call.
func (c *CodeCheck) Retry() domain.Input {
	items := append([]domain.Item(nil), c.Filtered...)
	raws := make([]string, len(items))
	for i, it := range items {
		raws[i] = it.Raw
	}
	return domain.Input{Kind: domain.InputSequence, Items: items, Raw: quoteList(raws)}
}

// Apply records the verdict in the session.
func (c *CodeCheck) Apply(s *domain.Session) {
	s.Set(domain.KeyCodeGuardBlocked, true)
	s.Set(domain.KeyLLMMessage, c.Verdict.LLMMessage)
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

package hsn

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/hsn/pkg/domain"
	"github.com/aretw0/hsn/pkg/guardrail"
	"github.com/aretw0/hsn/pkg/validator"
)

// Reply is the outcome of one conversational turn.
type Reply struct {
	// Refusal is set when the keyword guard blocked the message.
	Refusal string `json:"refusal,omitempty"`
	// Codes are the candidates found in the message.
	Codes []string `json:"codes,omitempty"`
	// Guardrail is set when some codes were removed before validation.
	Guardrail *guardrail.CodeVerdict `json:"guardrail,omitempty"`
	Results   []domain.Result        `json:"results,omitempty"`
}

// Assist handles a chat message end to end: screening, code extraction, the
// tool call and, when the code guard asks for it, one retry with the
// unblocked codes. The rendered answer is stored under domain.KeyLastResponse.
func (a *Assistant) Assist(ctx context.Context, sessionID, message string) (Reply, error) {
	screen, err := a.Screen(ctx, sessionID, message)
	if err != nil {
		return Reply{}, err
	}
	if screen.Verdict.Blocked {
		return a.remember(ctx, sessionID, Reply{Refusal: screen.Verdict.Message})
	}

	reply := Reply{Codes: validator.ExtractCodes(screen.Message)}
	if len(reply.Codes) == 0 {
		return a.remember(ctx, sessionID, reply)
	}

	resp, err := a.Tool(ctx, sessionID, domain.Strings(reply.Codes...))
	if err != nil {
		return Reply{}, err
	}
	if resp.Blocked() {
		reply.Guardrail = resp.Guardrail
		retry, ok := resp.RetryInput()
		if ok && retry.Len() > 0 {
			resp, err = a.Tool(ctx, sessionID, retry)
			if err != nil {
				return Reply{}, err
			}
		}
	}
	reply.Results = resp.Results
	return a.remember(ctx, sessionID, reply)
}

func (a *Assistant) remember(ctx context.Context, sessionID string, r Reply) (Reply, error) {
	err := a.updateSession(ctx, sessionID, func(s *domain.Session) {
		s.Set(domain.KeyLastResponse, r.Markdown())
	})
	return r, err
}

// Markdown renders the reply for a human reader.
func (r Reply) Markdown() string {
	if r.Refusal != "" {
		return r.Refusal
	}

	var b strings.Builder
	if len(r.Codes) == 0 && r.Guardrail == nil {
		b.WriteString("ℹ️ I couldn't find an HSN code in your message. ")
		b.WriteString("HSN codes are 2, 4, 6 or 8 digits long, for example `0101` or `84713000`.\n")
		return b.String()
	}

	if r.Guardrail != nil {
		fmt.Fprintf(&b, "ℹ️ Some codes were blocked by policy and not checked: %s\n\n",
			inlineCodes(r.Guardrail.BlockedCodes))
	}

	if len(r.Results) > 0 {
		b.WriteString("| | Code | Result |\n|---|---|---|\n")
		for _, res := range r.Results {
			fmt.Fprintf(&b, "| %s | `%s` | %s |\n", icon(res), cellText(res.Input), cellText(res.Message))
		}
		b.WriteString("\n")
	}

	b.WriteString("Would you like to check another HSN code? 😊\n")
	return b.String()
}

func icon(res domain.Result) string {
	switch {
	case res.Valid:
		return "✅"
	case res.Reason == domain.ReasonNotFoundButParentExists:
		return "ℹ️"
	default:
		return "❌"
	}
}

func inlineCodes(codes []string) string {
	quoted := make([]string, len(codes))
	for i, c := range codes {
		quoted[i] = "`" + c + "`"
	}
	return strings.Join(quoted, ", ")
}

func cellText(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

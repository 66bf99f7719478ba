package guardrail

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/hsn/pkg/domain"
)

// DefaultBlockedKeywords are matched case-insensitively anywhere in a message.
var DefaultBlockedKeywords = []string{"STUPID", "IDIOT"}

// DefaultRefusals are the canned replies returned for a blocked message.
var DefaultRefusals = []string{
	"I'm sorry, I cannot process this request as it contains inappropriate language.",
	"This query cannot be processed due to the presence of a blocked word.",
	"To maintain a respectful environment, I am unable to respond to messages containing certain terms.",
	"Your request has been flagged and cannot be completed.",
	"I cannot proceed with this request. Please rephrase your query without using blocked words.",
}

// KeywordVerdict is the outcome of screening one message.
type KeywordVerdict struct {
	Blocked bool   `json:"blocked"`
	Keyword string `json:"keyword,omitempty"`
	Message string `json:"message,omitempty"`
}

// Apply records a blocking verdict in the session.
func (v KeywordVerdict) Apply(s *domain.Session) {
	if v.Blocked {
		s.Set(domain.KeyKeywordBlocked, true)
	}
}

// KeywordGuard rejects messages containing blocked words.
type KeywordGuard struct {
	keywords []string
	refusals []string

	mu  sync.Mutex
	rnd *rand.Rand
}

type KeywordOption func(*KeywordGuard)

// WithKeywords replaces DefaultBlockedKeywords. Blank entries are ignored.
func WithKeywords(keywords ...string) KeywordOption {
	return func(g *KeywordGuard) {
		g.keywords = g.keywords[:0]
		for _, k := range keywords {
			if k = strings.TrimSpace(k); k != "" {
				g.keywords = append(g.keywords, strings.ToUpper(k))
			}
		}
	}
}

// WithRefusals replaces DefaultRefusals.
func WithRefusals(messages ...string) KeywordOption {
	return func(g *KeywordGuard) {
		if len(messages) > 0 {
			g.refusals = append([]string(nil), messages...)
		}
	}
}

// WithRand fixes the source used to pick a refusal.
func WithRand(r *rand.Rand) KeywordOption {
	return func(g *KeywordGuard) {
		if r != nil {
			g.rnd = r
		}
	}
}

// NewKeywordGuard creates a guard with the default keywords and refusals.
func NewKeywordGuard(opts ...KeywordOption) *KeywordGuard {
	g := &KeywordGuard{
		keywords: append([]string(nil), DefaultBlockedKeywords...),
		refusals: append([]string(nil), DefaultRefusals...),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check screens a message. The first matching keyword wins.
func (g *KeywordGuard) Check(message string) KeywordVerdict {
	upper := strings.ToUpper(message)
	for _, k := range g.keywords {
		if strings.Contains(upper, k) {
			return KeywordVerdict{
				Blocked: true,
				Keyword: k,
				Message: g.refusal(),
			}
		}
	}
	return KeywordVerdict{}
}

// Keywords returns the configured keywords.
func (g *KeywordGuard) Keywords() []string {
	return append([]string(nil), g.keywords...)
}

func (g *KeywordGuard) refusal() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refusals[g.rnd.Intn(len(g.refusals))]
}

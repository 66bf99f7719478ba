package hsn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/aretw0/hsn/internal/logging"
	"github.com/aretw0/hsn/pkg/adapters/memory"
	"github.com/aretw0/hsn/pkg/domain"
	"github.com/aretw0/hsn/pkg/guardrail"
	"github.com/aretw0/hsn/pkg/loader"
	"github.com/aretw0/hsn/pkg/persona"
	"github.com/aretw0/hsn/pkg/ports"
	"github.com/aretw0/hsn/pkg/session"
	"github.com/aretw0/hsn/pkg/validator"
	"github.com/google/uuid"
)

// Assistant is the high-level entry point of the library. It owns the active
// reference table, the guardrails and the session manager, and exposes the
// validation tool the way an agent would call it.
type Assistant struct {
	Name string

	dataPath   string
	loaderOpts []loader.Option
	table      atomic.Pointer[domain.Table]

	store    ports.SessionStore
	locker   ports.DistributedLocker
	sessions *session.Manager

	codeGuard    *guardrail.CodeGuard
	keywordGuard *guardrail.KeywordGuard
	maxMessage   int

	persona persona.Persona
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// Option defines a functional option for configuring the Assistant.
type Option func(*Assistant)

// WithTable injects a prebuilt table, bypassing the file loader.
func WithTable(t *domain.Table) Option {
	return func(a *Assistant) {
		if t != nil {
			a.table.Store(t)
		}
	}
}

// WithLoaderOptions forwards options (columns, sheet, SQLite table) to the loader.
func WithLoaderOptions(opts ...loader.Option) Option {
	return func(a *Assistant) {
		a.loaderOpts = append(a.loaderOpts, opts...)
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls merge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Assistant) {
		a.hooks = a.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// WithSessionStore replaces the default in-memory session store.
func WithSessionStore(store ports.SessionStore) Option {
	return func(a *Assistant) {
		a.store = store
	}
}

// WithLocker enables distributed session locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(a *Assistant) {
		a.locker = locker
	}
}

// WithCodeGuard replaces the default blocked-prefix guard. Nil disables it.
func WithCodeGuard(g *guardrail.CodeGuard) Option {
	return func(a *Assistant) {
		a.codeGuard = g
	}
}

// WithKeywordGuard replaces the default blocked-keyword guard. Nil disables it.
func WithKeywordGuard(g *guardrail.KeywordGuard) Option {
	return func(a *Assistant) {
		a.keywordGuard = g
	}
}

// WithoutGuardrails disables both guards.
func WithoutGuardrails() Option {
	return func(a *Assistant) {
		a.codeGuard = nil
		a.keywordGuard = nil
	}
}

// WithMaxMessageSize bounds free-text messages passed to Screen.
func WithMaxMessageSize(n int) Option {
	return func(a *Assistant) {
		a.maxMessage = n
	}
}

// WithPersona sets the agent card exposed to clients.
func WithPersona(p persona.Persona) Option {
	return func(a *Assistant) {
		a.persona = p
	}
}

// New initializes an Assistant. Unless WithTable is given, the table is read
// from dataPath; a failed read leaves an empty table, so every validation
// reports DATASTORE_UNAVAILABLE until Reload succeeds.
func New(dataPath string, opts ...Option) (*Assistant, error) {
	a := &Assistant{
		dataPath:     dataPath,
		codeGuard:    guardrail.NewCodeGuard(),
		keywordGuard: guardrail.NewKeywordGuard(),
		maxMessage:   guardrail.MaxInputSize(),
		persona:      persona.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = logging.NewNop()
	}
	if a.store == nil {
		a.store = memory.NewStore()
	}
	a.sessions = session.NewManager(a.store,
		session.WithLocker(a.locker),
		session.WithLogger(a.logger),
	)

	if a.table.Load() == nil {
		if dataPath == "" {
			return nil, errors.New("dataPath is required when no table is provided")
		}
		a.Name = filepath.Base(dataPath)
		a.logger = a.logger.With("table", a.Name)

		t, err := a.loadTable(context.Background())
		if err != nil {
			t = domain.EmptyTable(dataPath)
		}
		a.table.Store(t)
	} else {
		a.Name = a.table.Load().Source()
	}

	return a, nil
}

// Table returns the active reference table.
func (a *Assistant) Table() *domain.Table {
	return a.table.Load()
}

// DataPath returns the file the table is (re)loaded from.
func (a *Assistant) DataPath() string {
	return a.dataPath
}

// Reload re-reads the data file. On failure the previous table stays active.
func (a *Assistant) Reload(ctx context.Context) error {
	if a.dataPath == "" {
		return errors.New("no data file configured")
	}
	t, err := a.loadTable(ctx)
	if err != nil {
		return err
	}
	a.table.Store(t)
	return nil
}

func (a *Assistant) loadTable(ctx context.Context) (*domain.Table, error) {
	start := time.Now()
	opts := append([]loader.Option{loader.WithLogger(a.logger)}, a.loaderOpts...)
	t, err := loader.LoadFile(ctx, a.dataPath, opts...)

	ev := &domain.LoadEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTableLoad},
		Source:    a.dataPath,
		Duration:  time.Since(start),
		Err:       err,
	}
	if err != nil {
		a.logger.Error("HSN master data not loaded; validation will be unavailable",
			"path", a.dataPath,
			"err", err,
		)
	} else {
		ev.Codes = t.Len()
	}
	if a.hooks.OnTableLoad != nil {
		a.hooks.OnTableLoad(ctx, ev)
	}
	return t, err
}

// Validate runs the validator against the active table.
func (a *Assistant) Validate(ctx context.Context, in domain.Input) []domain.Result {
	return a.validate(ctx, "", in)
}

func (a *Assistant) validate(ctx context.Context, sessionID string, in domain.Input) []domain.Result {
	start := time.Now()
	results := validator.Validate(a.table.Load(), in)
	elapsed := time.Since(start)

	a.logger.Debug("Validated HSN codes",
		"session_id", sessionID,
		"inputs", in.Len(),
		"duration", elapsed,
	)
	if a.hooks.OnValidate != nil {
		a.hooks.OnValidate(ctx, &domain.ValidateEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventValidate, SessionID: sessionID},
			Inputs:    in.Len(),
			Results:   results,
			Duration:  elapsed,
		})
	}
	return results
}

// ToolResponse is what the validation tool hands back to the caller: either
// results, or a guardrail verdict asking for a retry with filtered input.
type ToolResponse struct {
	Results   []domain.Result        `json:"results,omitempty"`
	Guardrail *guardrail.CodeVerdict `json:"guardrail,omitempty"`

	retry *guardrail.CodeCheck
}

// Blocked reports whether the code guard rejected the call.
func (r ToolResponse) Blocked() bool {
	return r.Guardrail != nil
}

// RetryInput returns the filtered input suggested by a blocked call.
func (r ToolResponse) RetryInput() (domain.Input, bool) {
	if r.retry == nil {
		return domain.Input{}, false
	}
	return r.retry.Retry(), true
}

// Tool runs the validation tool as an agent would: code guard first, then the
// validator, then the results are stored in the session under
// domain.KeyLastResult. An empty sessionID skips persistence.
func (a *Assistant) Tool(ctx context.Context, sessionID string, in domain.Input) (ToolResponse, error) {
	if a.codeGuard != nil {
		if check := a.codeGuard.Check(in); check != nil {
			a.logger.Info("Blocked HSN codes removed from tool call",
				"session_id", sessionID,
				"blocked", check.Verdict.BlockedCodes,
			)
			a.guardrailEvent(ctx, sessionID, "code", check.Verdict.BlockedCodes)
			if err := a.updateSession(ctx, sessionID, check.Apply); err != nil {
				return ToolResponse{}, err
			}
			verdict := check.Verdict
			return ToolResponse{Guardrail: &verdict, retry: check}, nil
		}
	}

	results := a.validate(ctx, sessionID, in)
	err := a.updateSession(ctx, sessionID, func(s *domain.Session) {
		s.Set(domain.KeyLastResult, results)
	})
	if err != nil {
		return ToolResponse{}, err
	}
	return ToolResponse{Results: results}, nil
}

// ScreenResult is the sanitized message plus the keyword verdict.
type ScreenResult struct {
	Message string                   `json:"message"`
	Verdict guardrail.KeywordVerdict `json:"verdict"`
}

// Screen sanitizes a free-text message and runs the keyword guard on it. A
// block is recorded in the session.
func (a *Assistant) Screen(ctx context.Context, sessionID, message string) (ScreenResult, error) {
	clean, err := guardrail.SanitizeInputLimit(message, a.maxMessage)
	if err != nil {
		return ScreenResult{}, err
	}
	res := ScreenResult{Message: clean}
	if a.keywordGuard == nil {
		return res, nil
	}

	res.Verdict = a.keywordGuard.Check(clean)
	if !res.Verdict.Blocked {
		return res, nil
	}

	a.logger.Info("Blocked message with keyword", "session_id", sessionID, "keyword", res.Verdict.Keyword)
	a.guardrailEvent(ctx, sessionID, "keyword", []string{res.Verdict.Keyword})
	if err := a.updateSession(ctx, sessionID, res.Verdict.Apply); err != nil {
		return ScreenResult{}, err
	}
	return res, nil
}

func (a *Assistant) guardrailEvent(ctx context.Context, sessionID, guard string, blocked []string) {
	if a.hooks.OnGuardrail == nil {
		return
	}
	a.hooks.OnGuardrail(ctx, &domain.GuardrailEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventGuardrail, SessionID: sessionID},
		Guard:     guard,
		Blocked:   blocked,
	})
}

func (a *Assistant) updateSession(ctx context.Context, sessionID string, fn func(*domain.Session)) error {
	if sessionID == "" {
		return nil
	}
	_, err := a.sessions.Update(ctx, sessionID, func(s *domain.Session) error {
		fn(s)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", sessionID, err)
	}
	return nil
}

// Sessions returns the session manager.
func (a *Assistant) Sessions() *session.Manager {
	return a.sessions
}

// Persona returns the agent card.
func (a *Assistant) Persona() persona.Persona {
	return a.persona
}

// Guardrails reports the active guards, nil when disabled.
func (a *Assistant) Guardrails() (*guardrail.CodeGuard, *guardrail.KeywordGuard) {
	return a.codeGuard, a.keywordGuard
}

// NewSessionID returns a fresh random session identifier.
func (a *Assistant) NewSessionID() string {
	return uuid.NewString()
}

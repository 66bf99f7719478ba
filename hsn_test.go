package hsn_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/hsn"
	"github.com/aretw0/hsn/internal/testutils"
	"github.com/aretw0/hsn/pkg/domain"
	"github.com/aretw0/hsn/pkg/guardrail"
	"github.com/aretw0/hsn/pkg/persona"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LoadsTableFromFile(t *testing.T) {
	path := testutils.WriteSampleTable(t)

	var loads []*domain.LoadEvent
	a, err := hsn.New(path, hsn.WithLifecycleHooks(domain.LifecycleHooks{
		OnTableLoad: func(_ context.Context, e *domain.LoadEvent) { loads = append(loads, e) },
	}))
	require.NoError(t, err)

	assert.Equal(t, "hsn.csv", a.Name)
	assert.Equal(t, 7, a.Table().Len())
	require.Len(t, loads, 1)
	assert.NoError(t, loads[0].Err)
	assert.Equal(t, 7, loads[0].Codes)
}

func TestNew_MissingFileDegrades(t *testing.T) {
	var loadErr error
	a, err := hsn.New(filepath.Join(t.TempDir(), "missing.xlsx"), hsn.WithLifecycleHooks(domain.LifecycleHooks{
		OnTableLoad: func(_ context.Context, e *domain.LoadEvent) { loadErr = e.Err },
	}))
	require.NoError(t, err, "a missing master file is not fatal")
	assert.ErrorIs(t, loadErr, os.ErrNotExist)

	results := a.Validate(context.Background(), domain.Strings("0101", "bad"))
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, domain.ReasonDatastoreUnavailable, r.Reason)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	_, err := hsn.New("")
	assert.Error(t, err)
}

func TestReload_KeepsPreviousTableOnFailure(t *testing.T) {
	path := testutils.WriteSampleTable(t)
	a, err := hsn.New(path)
	require.NoError(t, err)
	before := a.Table()

	require.NoError(t, os.WriteFile(path, []byte("Code,Text\n01,x\n"), 0o644))
	assert.ErrorIs(t, a.Reload(context.Background()), domain.ErrMissingColumns)
	assert.Same(t, before, a.Table())

	require.NoError(t, os.WriteFile(path, []byte("HSNCode,Description\n99,Misc\n"), 0o644))
	require.NoError(t, a.Reload(context.Background()))
	assert.Equal(t, 1, a.Table().Len())

	results := a.Validate(context.Background(), domain.Strings("99", "01"))
	assert.Equal(t, domain.ReasonValid, results[0].Reason)
	assert.Equal(t, domain.ReasonNotFound, results[1].Reason)
}

func TestReload_WithoutDataFile(t *testing.T) {
	a, err := hsn.New("", hsn.WithTable(domain.NewTable("x", map[string]string{"01": "a"})))
	require.NoError(t, err)
	assert.Error(t, a.Reload(context.Background()))
}

func TestTool_PersistsResults(t *testing.T) {
	a, err := hsn.New(testutils.WriteSampleTable(t))
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := a.Tool(ctx, "s1", domain.Strings("8471", "847199"))
	require.NoError(t, err)
	assert.False(t, resp.Blocked())
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "8471", resp.Results[1].ParentCode)

	s, err := a.Sessions().Load(ctx, "s1")
	require.NoError(t, err)
	stored, err := s.LastResults()
	require.NoError(t, err)
	assert.Equal(t, resp.Results, stored)
}

func TestTool_CodeGuardBlocks(t *testing.T) {
	var guards []string
	a, err := hsn.New(testutils.WriteSampleTable(t), hsn.WithLifecycleHooks(domain.LifecycleHooks{
		OnGuardrail: func(_ context.Context, e *domain.GuardrailEvent) { guards = append(guards, e.Guard) },
	}))
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := a.Tool(ctx, "s1", domain.Strings("12345678", " 0101 "))
	require.NoError(t, err)
	require.True(t, resp.Blocked())
	assert.Empty(t, resp.Results)
	assert.Equal(t, []string{"12345678"}, resp.Guardrail.BlockedCodes)
	assert.Equal(t, []string{"0101"}, resp.Guardrail.UnblockedCodes)
	assert.Equal(t, []string{"code"}, guards)

	s, err := a.Sessions().Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, s.Flag(domain.KeyCodeGuardBlocked))
	assert.Equal(t, resp.Guardrail.LLMMessage, s.State[domain.KeyLLMMessage])
	_, hasResults := s.State[domain.KeyLastResult]
	assert.False(t, hasResults, "a blocked call validates nothing")
}

func TestTool_GuardrailsDisabled(t *testing.T) {
	a, err := hsn.New(testutils.WriteSampleTable(t), hsn.WithoutGuardrails())
	require.NoError(t, err)

	resp, err := a.Tool(context.Background(), "", domain.Strings("12345678"))
	require.NoError(t, err)
	assert.False(t, resp.Blocked())
	assert.Equal(t, domain.ReasonNotFound, resp.Results[0].Reason)

	res, err := a.Screen(context.Background(), "", "you idiot")
	require.NoError(t, err)
	assert.False(t, res.Verdict.Blocked)
}

func TestTool_SessionStoreFailure(t *testing.T) {
	a, err := hsn.New(testutils.WriteSampleTable(t), hsn.WithSessionStore(&failingStore{}))
	require.NoError(t, err)

	_, err = a.Tool(context.Background(), "s1", domain.Strings("01"))
	assert.Error(t, err)
}

func TestScreen(t *testing.T) {
	a, err := hsn.New(testutils.WriteSampleTable(t),
		hsn.WithKeywordGuard(guardrail.NewKeywordGuard(guardrail.WithRefusals("no."))),
		hsn.WithMaxMessageSize(32),
	)
	require.NoError(t, err)
	ctx := context.Background()

	res, err := a.Screen(ctx, "s1", "check \x1b8471")
	require.NoError(t, err)
	assert.Equal(t, "check 8471", res.Message)
	assert.False(t, res.Verdict.Blocked)

	res, err = a.Screen(ctx, "s1", "STUPID tool")
	require.NoError(t, err)
	assert.True(t, res.Verdict.Blocked)
	assert.Equal(t, "no.", res.Verdict.Message)

	s, err := a.Sessions().Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, s.Flag(domain.KeyKeywordBlocked))

	_, err = a.Screen(ctx, "s1", strings.Repeat("8", 33))
	assert.ErrorIs(t, err, domain.ErrInputTooLarge)
}

func TestValidate_ConcurrentWithReload(t *testing.T) {
	path := testutils.WriteSampleTable(t)
	a, err := hsn.New(path)
	require.NoError(t, err)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				results := a.Validate(ctx, domain.Strings("0101", "84"))
				assert.Len(t, results, 2)
			}
		}()
	}
	for i := 0; i < 5; i++ {
		assert.NoError(t, a.Reload(ctx))
	}
	wg.Wait()
}

func TestPersonaAndSessionID(t *testing.T) {
	a, err := hsn.New("", hsn.WithTable(domain.NewTable("x", map[string]string{"01": "a"})))
	require.NoError(t, err)
	assert.Equal(t, persona.Default(), a.Persona())

	id1, id2 := a.NewSessionID(), a.NewSessionID()
	assert.Len(t, id1, 36)
	assert.NotEqual(t, id1, id2)
}

type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Save(context.Context, *domain.Session) error { return errStoreDown }
func (failingStore) Load(context.Context, string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (failingStore) Delete(context.Context, string) error     { return errStoreDown }
func (failingStore) List(context.Context) ([]string, error) { return nil, errStoreDown }

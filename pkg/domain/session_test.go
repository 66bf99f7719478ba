package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_LastResults_InMemory(t *testing.T) {
	s := NewSession("s1")
	want := []Result{ValidResult("8465", "Machine tools")}
	s.Set(KeyLastResult, want)

	got, err := s.LastResults()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSession_LastResults_AfterJSONRoundTrip(t *testing.T) {
	s := NewSession("s1")
	s.Set(KeyLastResult, []Result{
		ValidResult("8465", "Machine tools"),
		ParentCategoryResult("846591", "8465", "Machine tools"),
		NotFoundResult("99999999"),
	})

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded Session
	require.NoError(t, json.Unmarshal(data, &decoded))

	got, err := decoded.LastResults()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Valid)
	assert.Equal(t, ReasonNotFoundButParentExists, got[1].Reason)
	assert.Equal(t, "8465", got[1].ParentCode)
	assert.Equal(t, ReasonNotFound, got[2].Reason)
}

func TestSession_LastResults_Missing(t *testing.T) {
	got, err := NewSession("s1").LastResults()
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSession_SnapshotIsolation(t *testing.T) {
	s := NewSession("s1")
	s.Set("foo", "bar")

	cp := s.Snapshot()
	cp.Set("foo", "baz")

	assert.Equal(t, "bar", s.State["foo"])
	assert.True(t, NewSession("x").Snapshot().State != nil)
}

func TestReasonCode_Known(t *testing.T) {
	for _, r := range ReasonCodes {
		assert.True(t, r.Known(), r)
	}
	assert.False(t, ReasonCode("BOGUS").Known())
}

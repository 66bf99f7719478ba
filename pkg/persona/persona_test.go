package persona_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/hsn/internal/testutils"
	"github.com/aretw0/hsn/pkg/domain"
	"github.com/aretw0/hsn/pkg/persona"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	p := persona.Default()

	assert.Equal(t, "hsn_code_agent", p.Name)
	assert.Equal(t, domain.ToolName, p.Tool)
	assert.Equal(t, domain.KeyLastResponse, p.OutputKey)
	assert.Contains(t, p.Instruction, "hsn_code_validation_tool")
	assert.NoError(t, p.Validate())
}

func TestLoad_FromMarkdown(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{
		"agent.md": `---
name: customs_helper
description: Checks tariff codes for the import desk.
tool: hsn_code_validation_tool
---
Answer in one short paragraph.
`,
	})

	p, err := persona.Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "customs_helper", p.Name)
	assert.Equal(t, "Checks tariff codes for the import desk.", p.Description)
	assert.Equal(t, "Answer in one short paragraph.", p.Instruction)
	assert.Equal(t, persona.Default().Model, p.Model, "missing fields fall back to defaults")
	assert.NoError(t, p.Validate())
	assert.Contains(t, p.Prompt(), "# customs_helper")
}

func TestLoad_EmptyBodyKeepsDefaultInstruction(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{
		"agent.md": "---\nname: terse\n---\n",
	})

	p, err := persona.Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, persona.Default().Instruction, p.Instruction)
}

func TestLoad_WrongTool(t *testing.T) {
	dir := testutils.WriteFiles(t, map[string]string{
		"agent.md": "---\nname: x\ntool: web_search\n---\nbody\n",
	})

	p, err := persona.Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Error(t, p.Validate())
}

func TestLoad_Missing(t *testing.T) {
	_, err := persona.Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)

	_, err = persona.Load(context.Background(), t.TempDir())
	assert.Error(t, err, "directory without agent.md")
}

func TestLoadOrDefault(t *testing.T) {
	p, err := persona.LoadOrDefault(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, persona.Default(), p)
}

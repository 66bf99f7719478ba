package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/hsn"
	"github.com/aretw0/hsn/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *hsn.Assistant) {
	t.Helper()
	a, err := hsn.New("", hsn.WithTable(domain.NewTable("test", map[string]string{
		"01":   "Live animals",
		"0101": "Live horses, asses, mules and hinnies",
		"84":   "Machinery",
	})))
	require.NoError(t, err)
	return NewServer(a), a
}

func TestHandleValidate(t *testing.T) {
	s, a := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleValidate(ctx, mcp.CallToolRequest{}, ValidateArgs{
		HSNInputs: []any{"0101", "010199", 8471.0, "abc"},
		SessionID: "mcp-1",
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 4)

	reasons := make([]domain.ReasonCode, len(resp.Results))
	for i, r := range resp.Results {
		reasons[i] = r.Reason
	}
	assert.Equal(t, []domain.ReasonCode{
		domain.ReasonValid,
		domain.ReasonNotFoundButParentExists,
		domain.ReasonInvalidItemType,
		domain.ReasonInvalidFormat,
	}, reasons)
	assert.Equal(t, "8471", resp.Results[2].Input)

	sess, err := a.Sessions().Load(ctx, "mcp-1")
	require.NoError(t, err)
	stored, err := sess.LastResults()
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestHandleValidate_Scalar(t *testing.T) {
	s, _ := newTestServer(t)

	resp, err := s.handleValidate(context.Background(), mcp.CallToolRequest{}, ValidateArgs{HSNInputs: "0101"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, domain.ReasonInvalidInputType, resp.Results[0].Reason)
}

func TestHandleValidate_Guardrail(t *testing.T) {
	s, _ := newTestServer(t)

	resp, err := s.handleValidate(context.Background(), mcp.CallToolRequest{}, ValidateArgs{
		HSNInputs: []any{"12345", "84"},
	})
	require.NoError(t, err)
	require.True(t, resp.Blocked())
	assert.Equal(t, domain.NextActionRetryFiltered, resp.Guardrail.NextAction)

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"guardrail":{
		"unblocked_codes":["84"],
		"blocked_codes":["12345"],
		"llm_message":`+mustJSON(t, resp.Guardrail.LLMMessage)+`,
		"next_action":"RETRY_WITH_FILTERED_INPUT"}}`, string(raw))
}

func TestHandleLookup(t *testing.T) {
	s, _ := newTestServer(t)

	res, err := s.handleLookup(context.Background(), mcp.CallToolRequest{}, LookupArgs{Code: "84713000"})
	require.NoError(t, err)
	assert.Equal(t, domain.ReasonNotFoundButParentExists, res.Reason)
	assert.Equal(t, "84", res.ParentCode)
	assert.Equal(t, "Machinery", res.Description)
}

func TestStructuredHandlerBindsArguments(t *testing.T) {
	s, _ := newTestServer(t)
	handler := mcp.NewStructuredToolHandler(s.handleValidate)

	req := mcp.CallToolRequest{}
	req.Params.Name = domain.ToolName
	req.Params.Arguments = map[string]any{"hsn_inputs": []any{"01"}}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out hsn.ToolResponse
	require.NoError(t, json.Unmarshal([]byte(mustJSON(t, result.StructuredContent)), &out))
	require.Len(t, out.Results, 1)
	assert.True(t, out.Results[0].Valid)
}

func TestHandlePrompt(t *testing.T) {
	s, a := newTestServer(t)

	req := mcp.GetPromptRequest{}
	req.Params.Name = PromptName
	req.Params.Arguments = map[string]string{"message": "is 0101 valid?"}

	res, err := s.handlePrompt(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a.Persona().Description, res.Description)
	require.Len(t, res.Messages, 2)

	text, ok := res.Messages[1].Content.(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "is 0101 valid?", text.Text)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

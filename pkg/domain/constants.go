package domain

// ToolName is the name under which the validator is exposed to agents.
const ToolName = "hsn_code_validation_tool"

// Session state keys.
const (
	KeyLastResult       = "hsn_tool_last_result"
	KeyCodeGuardBlocked = "guardrail_hsn_block_triggered"
	KeyKeywordBlocked   = "guardrail_block_keyword_triggered"
	KeyLLMMessage       = "llm_message"
	KeyLastResponse     = "hsn_agent_last_response"
)

// NextActionRetryFiltered tells the calling agent to repeat the tool call with
// the unblocked codes only.
const NextActionRetryFiltered = "RETRY_WITH_FILTERED_INPUT"

// ValidLengths lists the digit counts of the HSN hierarchy levels.
var ValidLengths = [...]int{2, 4, 6, 8}

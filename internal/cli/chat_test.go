package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunChat_Headless(t *testing.T) {
	app := buildApp(t, testConfig(t))
	sc := NewSignalContext(context.Background())
	defer sc.Cancel()

	var out bytes.Buffer
	err := RunChat(sc, app, ChatOptions{
		SessionID: "chat-1",
		Headless:  true,
		Input:     strings.NewReader("is 0101 valid?\nyou are STUPID\nexit\n"),
		Output:    &out,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "✅")
	assert.Contains(t, text, "0101")
	assert.Contains(t, text, "Thanks for using the HSN assistant. Bye!")
	assert.NotContains(t, text, "HSN code assistant", "headless mode prints no banner")

	s, err := app.Assistant.Sessions().Load(context.Background(), "chat-1")
	require.NoError(t, err)
	assert.True(t, s.Flag("guardrail_block_keyword_triggered"))
}

func TestRunChat_CancelledContext(t *testing.T) {
	app := buildApp(t, testConfig(t))
	sc := NewSignalContext(context.Background())
	sc.Cancel()

	err := RunChat(sc, app, ChatOptions{
		Headless: true,
		Input:    strings.NewReader("0101\n"),
		Output:   &bytes.Buffer{},
	})
	assert.NoError(t, err)
}

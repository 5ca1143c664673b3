package openai

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/couchproof/couchproof-backend/pkg/config"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChatClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(config.OpenAIConfig{
		APIKey:  "sk-test",
		Model:   "gpt-4o-mini",
		BaseURL: "https://api.openai.com/v1",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	httpmock.ActivateNonDefault(client.http)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	client := testChatClient(t)
	httpmock.RegisterResponder(http.MethodPost, "https://api.openai.com/v1/chat/completions",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
			return httpmock.NewStringResponse(200, `{"choices": [{"message": {"role": "assistant", "content": "Nice streak."}}]}`), nil
		})

	out, err := client.Complete(context.Background(), []ChatMessage{
		{Role: "system", Content: "You write roasts."},
		{Role: "user", Content: "Roast me."},
	})
	require.NoError(t, err)
	assert.Equal(t, "Nice streak.", out)
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	client := testChatClient(t)
	httpmock.RegisterResponder(http.MethodPost, "https://api.openai.com/v1/chat/completions",
		httpmock.NewStringResponder(429, `{"error": {"message": "Rate limit reached", "type": "requests"}}`))

	_, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Rate limit reached")
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(config.OpenAIConfig{BaseURL: "https://api.openai.com/v1"})
	assert.Error(t, err)
}

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGemini_Summarize(t *testing.T) {
	t.Parallel()

	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		require.Equal(t, "key-1", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{{"text": "the summary"}},
				},
			}},
		})
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{Endpoint: srv.URL, APIKey: "key-1"})
	got, err := g.Summarize(context.Background(), "article text", "Summarize")
	require.NoError(t, err)
	require.Equal(t, "the summary", got)
	require.Equal(t, 600, gotBody.GenerationConfig.MaxOutputTokens)
	require.Contains(t, gotBody.Contents[0].Parts[0].Text, "article text")
	require.Contains(t, gotBody.Contents[0].Parts[0].Text, "Summarize")
}

func TestGemini_SummarizeEmptyShapeIsBadResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{Endpoint: srv.URL, APIKey: "key-1"})
	_, err := g.Summarize(context.Background(), "text", "p")
	require.ErrorIs(t, err, ErrBadResponse)
}

func TestGemini_SummarizeNonJSONIsBadResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{Endpoint: srv.URL, APIKey: "key-1"})
	_, err := g.Summarize(context.Background(), "text", "p")
	require.ErrorIs(t, err, ErrBadResponse)
}

func TestGemini_SummarizeHTMLErrorBodyIsSanitized(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html><body><h1>502 Bad Gateway</h1></body></html>"))
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{Endpoint: srv.URL, APIKey: "key-1"})
	_, err := g.Summarize(context.Background(), "text", "p")
	require.Error(t, err)
	require.NotContains(t, err.Error(), "<html>")
	require.Contains(t, err.Error(), "non-JSON response (HTML)")
	require.NotErrorIs(t, err, ErrBadResponse, "non-2xx is a transport failure, not a format failure")
}

func TestOpenAI_Summarize(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer key-2", r.Header.Get("Authorization"))
		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "gpt-3.5-turbo", req.Model)
		require.Len(t, req.Messages, 2)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]string{"content": "openai summary"},
			}},
		})
	}))
	defer srv.Close()

	o := NewOpenAI(OpenAIConfig{Endpoint: srv.URL, APIKey: "key-2"})
	got, err := o.Summarize(context.Background(), "text", "p")
	require.NoError(t, err)
	require.Equal(t, "openai summary", got)
}

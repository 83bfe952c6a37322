package hf

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ChatCompletion(t *testing.T) {
	var gotAuth string
	var gotReq completionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test/model")

	reply, err := client.ChatCompletion(context.Background(), "hf_token", []Message{
		{Role: "user", Content: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)
	assert.Equal(t, "Bearer hf_token", gotAuth)
	assert.Equal(t, "test/model", gotReq.Model)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "hello", gotReq.Messages[0].Content)
}

func TestClient_ChatCompletion_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid token"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test/model")

	_, err := client.ChatCompletion(context.Background(), "bad", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestClient_ChatCompletion_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test/model")

	_, err := client.ChatCompletion(context.Background(), "hf_token", nil)
	require.Error(t, err)
}

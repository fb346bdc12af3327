package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func noSleep(context.Context, time.Duration) error { return nil }

func testClient(serverURL string) *Client {
	return NewClient(Config{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Model:   "test-model",
	}, WithSleeper(noSleep))
}

func completionBody(content string) string {
	return `{"choices": [{"message": {"content": "` + content + `"}}]}`
}

func TestClient_Complete_Success(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(completionBody("YES")))
	}))
	defer server.Close()

	content, err := testClient(server.URL).Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if content != "YES" {
		t.Errorf("Expected content 'YES', got %q", content)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
}

func TestClient_Complete_RetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(completionBody("recovered")))
	}))
	defer server.Close()

	content, err := testClient(server.URL).Complete(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Expected recovery after retries, got %v", err)
	}
	if content != "recovered" {
		t.Errorf("Unexpected content: %q", content)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}
}

func TestClient_Complete_TransportErrorAfterExhaustedRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("Expected an error after exhausted retries")
	}
	if !IsTransport(err) {
		t.Errorf("Expected transport error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}
}

func TestClient_Complete_ProviderErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid key"}}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("Expected a provider error")
	}
	if IsTransport(err) {
		t.Errorf("Provider rejection should not be a transport error: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("Provider errors should not be retried, got %d attempts", calls.Load())
	}
}

func TestClient_Complete_EmptyChoicesIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("Expected a malformed response error")
	}
	if !IsMalformed(err) {
		t.Errorf("Expected malformed error, got %v", err)
	}
}

func TestClient_Complete_MissingAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:9"})

	_, err := client.Complete(context.Background(), "system", "user")
	if err == nil {
		t.Fatal("Expected an error when the API key is missing")
	}
	if IsTransport(err) || IsMalformed(err) {
		t.Errorf("Missing key should be a provider error, got %v", err)
	}
}

func TestBackoffDelay_CappedGrowth(t *testing.T) {
	if d := backoffDelay(1); d != 1*time.Second {
		t.Errorf("Expected 1s for first attempt, got %v", d)
	}
	if d := backoffDelay(2); d != 2*time.Second {
		t.Errorf("Expected 2s for second attempt, got %v", d)
	}
	if d := backoffDelay(10); d != 10*time.Second {
		t.Errorf("Expected cap of 10s, got %v", d)
	}
}

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/Jitesh17/docai/internal/common"
	"github.com/Jitesh17/docai/internal/interfaces"
	"github.com/Jitesh17/docai/internal/models"
)

type stubSession struct {
	identity *models.Identity
}

func (s *stubSession) CurrentIdentity() *models.Identity { return s.identity }

func (s *stubSession) ObtainCredential(ctx context.Context) (models.Credential, error) {
	if s.identity == nil {
		return "", models.ErrUnauthenticated
	}
	return "test-token", nil
}

func (s *stubSession) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	s.identity = &models.Identity{UID: "uid-1", Email: email}
	return s.identity, nil
}

func (s *stubSession) SignUp(ctx context.Context, email, password string) (*models.Identity, error) {
	return s.SignIn(ctx, email, password)
}

func (s *stubSession) SignOut()           { s.identity = nil }
func (s *stubSession) OnSignOut(h func()) {}

type stubSelector struct {
	url string
}

func (s *stubSelector) Current() string { return s.url }
func (s *stubSelector) Name() string    { return "local" }
func (s *stubSelector) Toggle() string  { return s.url }
func (s *stubSelector) Epoch() uint64   { return 0 }

// memHistory records appended exchanges in memory
type memHistory struct {
	exchanges []*models.Exchange
}

func (m *memHistory) Append(ctx context.Context, exchange *models.Exchange) error {
	m.exchanges = append(m.exchanges, exchange)
	return nil
}

func (m *memHistory) List(ctx context.Context, limit int) ([]*models.Exchange, error) {
	return m.exchanges, nil
}

func (m *memHistory) Clear(ctx context.Context) error {
	m.exchanges = nil
	return nil
}

func (m *memHistory) Count(ctx context.Context) (int, error) {
	return len(m.exchanges), nil
}

func signedInSession() *stubSession {
	return &stubSession{identity: &models.Identity{UID: "uid-1", Email: "user@example.com"}}
}

func newTestDispatcher(session *stubSession, url string, history *memHistory) *Dispatcher {
	config := &common.AIConfig{DefaultProvider: "openai", RequestsPerMinute: 0}

	// A typed nil in the interface would read as history enabled.
	var h interfaces.HistoryStorage
	if history != nil {
		h = history
	}
	return NewDispatcher(session, &stubSelector{url: url}, h, config, arbor.NewLogger())
}

func minimalDraft() models.AIRequestDraft {
	return models.AIRequestDraft{
		Provider:    models.ProviderOpenAI,
		Prompt:      "summarize the report",
		SelectedIDs: []string{"doc-1"},
	}
}

func TestSubmitRequiresSignIn(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	dispatcher := newTestDispatcher(&stubSession{}, server.URL, nil)

	_, err := dispatcher.Submit(context.Background(), minimalDraft())
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	assert.Equal(t, int64(0), calls.Load())
}

func TestSubmitRequiresSelectedDocuments(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	dispatcher := newTestDispatcher(signedInSession(), server.URL, nil)

	draft := minimalDraft()
	draft.SelectedIDs = nil

	_, err := dispatcher.Submit(context.Background(), draft)
	assert.ErrorIs(t, err, models.ErrNoContentSource)
	assert.Equal(t, int64(0), calls.Load())
}

func TestSubmitRejectsUnknownProvider(t *testing.T) {
	dispatcher := newTestDispatcher(signedInSession(), "http://localhost:1", nil)

	draft := minimalDraft()
	draft.Provider = "gemini"

	_, err := dispatcher.Submit(context.Background(), draft)

	var reqErr *models.AIRequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, models.AIFailureSend, reqErr.Kind)
}

func TestSubmitSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/send-to-ai", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "openai", body["api"])
		assert.Equal(t, "summarize the report", body["prompt"])
		assert.Equal(t, []interface{}{"doc-1"}, body["selectedDocumentIds"])
		assert.Equal(t, false, body["useFrontendApiKey"])
		// No caller key and no token cap were set, so neither is on the wire.
		assert.NotContains(t, body, "openAiApiKey")
		assert.NotContains(t, body, "claudeApiKey")
		assert.NotContains(t, body, "maxTokens")

		json.NewEncoder(w).Encode(map[string]string{"message": "the report says hello"})
	}))
	defer server.Close()

	dispatcher := newTestDispatcher(signedInSession(), server.URL, nil)

	message, err := dispatcher.Submit(context.Background(), minimalDraft())
	require.NoError(t, err)
	assert.Equal(t, "the report says hello", message)
	assert.False(t, dispatcher.Busy())
}

func TestSubmitForwardsOnlyActiveProviderKey(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	defer server.Close()

	dispatcher := newTestDispatcher(signedInSession(), server.URL, nil)

	draft := minimalDraft()
	draft.Provider = models.ProviderClaude
	draft.UseCallerKey = true
	draft.OpenAIKey = "sk-openai"
	draft.ClaudeKey = "sk-claude"

	_, err := dispatcher.Submit(context.Background(), draft)
	require.NoError(t, err)

	assert.Equal(t, true, body["useFrontendApiKey"])
	assert.Equal(t, "sk-claude", body["claudeApiKey"])
	// The other provider's key stays local even though it was set.
	assert.NotContains(t, body, "openAiApiKey")
}

func TestSubmitOmitsKeysWithoutCallerKeyFlag(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	defer server.Close()

	dispatcher := newTestDispatcher(signedInSession(), server.URL, nil)

	draft := minimalDraft()
	draft.OpenAIKey = "sk-openai"

	_, err := dispatcher.Submit(context.Background(), draft)
	require.NoError(t, err)

	assert.NotContains(t, body, "openAiApiKey")
	assert.NotContains(t, body, "claudeApiKey")
}

func TestSubmitForwardsPositiveMaxTokens(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	defer server.Close()

	dispatcher := newTestDispatcher(signedInSession(), server.URL, nil)

	draft := minimalDraft()
	draft.MaxTokens = 1024

	_, err := dispatcher.Submit(context.Background(), draft)
	require.NoError(t, err)

	assert.Equal(t, float64(1024), body["maxTokens"])
}

func TestSubmitClassifiesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "quota exceeded"})
	}))
	defer server.Close()

	dispatcher := newTestDispatcher(signedInSession(), server.URL, nil)

	_, err := dispatcher.Submit(context.Background(), minimalDraft())

	var reqErr *models.AIRequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, models.AIFailureServer, reqErr.Kind)
	assert.Equal(t, http.StatusTooManyRequests, reqErr.StatusCode)
	assert.Equal(t, "quota exceeded", reqErr.Message)
}

func TestSubmitClassifiesNoResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening

	dispatcher := newTestDispatcher(signedInSession(), server.URL, nil)

	_, err := dispatcher.Submit(context.Background(), minimalDraft())

	var reqErr *models.AIRequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, models.AIFailureNoResponse, reqErr.Kind)
}

func TestSubmitClassifiesMissingMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"unexpected": "shape"})
	}))
	defer server.Close()

	dispatcher := newTestDispatcher(signedInSession(), server.URL, nil)

	_, err := dispatcher.Submit(context.Background(), minimalDraft())

	var reqErr *models.AIRequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, models.AIFailureServer, reqErr.Kind)
}

func TestSubmitRateLimitDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	defer server.Close()

	config := &common.AIConfig{DefaultProvider: "openai", RequestsPerMinute: 1}
	dispatcher := NewDispatcher(signedInSession(), &stubSelector{url: server.URL}, nil, config, arbor.NewLogger())

	_, err := dispatcher.Submit(context.Background(), minimalDraft())
	require.NoError(t, err)

	// The single token for this minute is spent.
	_, err = dispatcher.Submit(context.Background(), minimalDraft())

	var reqErr *models.AIRequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, models.AIFailureSend, reqErr.Kind)
}

func TestSubmitRejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	}))
	defer server.Close()

	dispatcher := newTestDispatcher(signedInSession(), server.URL, nil)

	done := make(chan error, 1)
	go func() {
		_, err := dispatcher.Submit(context.Background(), minimalDraft())
		done <- err
	}()

	<-entered
	assert.True(t, dispatcher.Busy())

	_, err := dispatcher.Submit(context.Background(), minimalDraft())
	assert.ErrorIs(t, err, models.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, dispatcher.Busy())
}

func TestSubmitRecordsExchangeOnSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "the answer"})
	}))
	defer server.Close()

	history := &memHistory{}
	dispatcher := newTestDispatcher(signedInSession(), server.URL, history)

	_, err := dispatcher.Submit(context.Background(), minimalDraft())
	require.NoError(t, err)

	require.Len(t, history.exchanges, 1)
	exchange := history.exchanges[0]
	assert.Equal(t, models.ProviderOpenAI, exchange.Provider)
	assert.Equal(t, "summarize the report", exchange.Prompt)
	assert.Equal(t, []string{"doc-1"}, exchange.DocumentIDs)
	assert.Equal(t, "the answer", exchange.Response)
	assert.Equal(t, server.URL, exchange.Endpoint)
	assert.NotEmpty(t, exchange.ID)
}

func TestSubmitRecordsNothingOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	history := &memHistory{}
	dispatcher := newTestDispatcher(signedInSession(), server.URL, history)

	_, err := dispatcher.Submit(context.Background(), minimalDraft())
	require.Error(t, err)
	assert.Empty(t, history.exchanges)
}

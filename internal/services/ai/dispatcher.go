package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/Jitesh17/docai/internal/common"
	"github.com/Jitesh17/docai/internal/interfaces"
	"github.com/Jitesh17/docai/internal/models"
)

// Dispatcher assembles AI requests from a draft and dispatches them to the
// backend's AI endpoint, classifying every outcome. Preconditions are
// checked in order and short-circuit before any network traffic.
type Dispatcher struct {
	session  interfaces.SessionManager
	selector interfaces.EndpointSelector
	history  interfaces.HistoryStorage // nil disables history recording
	client   *http.Client
	limiter  *rate.Limiter // nil = no client-side limit
	logger   arbor.ILogger

	busy atomic.Bool
}

// NewDispatcher creates a request dispatcher. A positive requests-per-minute
// setting installs a client-side politeness limit; history may be nil.
func NewDispatcher(session interfaces.SessionManager, selector interfaces.EndpointSelector, history interfaces.HistoryStorage, aiConfig *common.AIConfig, logger arbor.ILogger) *Dispatcher {
	var limiter *rate.Limiter
	if aiConfig.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(aiConfig.RequestsPerMinute)), 1)
	}

	return &Dispatcher{
		session:  session,
		selector: selector,
		history:  history,
		client:   &http.Client{},
		limiter:  limiter,
		logger:   logger,
	}
}

// sendRequest is the AI endpoint wire shape. Caller-supplied provider keys
// are forwarded only for the active provider; the other provider's key is
// omitted even when populated.
type sendRequest struct {
	API                 string   `json:"api"`
	Prompt              string   `json:"prompt"`
	SelectedDocumentIDs []string `json:"selectedDocumentIds"`
	UseFrontendAPIKey   bool     `json:"useFrontendApiKey"`
	OpenAIAPIKey        string   `json:"openAiApiKey,omitempty"`
	ClaudeAPIKey        string   `json:"claudeApiKey,omitempty"`
	MaxTokens           int      `json:"maxTokens,omitempty"`
}

// sendResponse is the canonical success shape: the server normalizes all
// provider responses to a flat message.
type sendResponse struct {
	Message string `json:"message"`
}

// errorResponse covers the error payload shapes the backend emits
type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Submit dispatches the draft and returns the AI response text. Failures
// come back as models.ErrUnauthenticated, models.ErrNoContentSource,
// models.ErrBusy, or *models.AIRequestError.
func (d *Dispatcher) Submit(ctx context.Context, draft models.AIRequestDraft) (string, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return "", models.ErrBusy
	}
	defer d.busy.Store(false)

	// Preconditions, in order, before any network call.
	if d.session.CurrentIdentity() == nil {
		return "", models.ErrUnauthenticated
	}
	if len(draft.SelectedIDs) == 0 {
		return "", models.ErrNoContentSource
	}
	if _, ok := models.ParseProvider(string(draft.Provider)); !ok {
		return "", &models.AIRequestError{
			Kind:    models.AIFailureSend,
			Message: fmt.Sprintf("unknown provider %q", draft.Provider),
		}
	}
	if d.limiter != nil && !d.limiter.Allow() {
		return "", &models.AIRequestError{
			Kind:    models.AIFailureSend,
			Message: "client-side rate limit reached, retry shortly",
		}
	}

	credential, err := d.session.ObtainCredential(ctx)
	if err != nil {
		return "", err
	}

	request := sendRequest{
		API:                 string(draft.Provider),
		Prompt:              draft.Prompt,
		SelectedDocumentIDs: draft.SelectedIDs,
		UseFrontendAPIKey:   draft.UseCallerKey,
	}
	if draft.UseCallerKey {
		switch draft.Provider {
		case models.ProviderOpenAI:
			request.OpenAIAPIKey = draft.OpenAIKey
		case models.ProviderClaude:
			request.ClaudeAPIKey = draft.ClaudeKey
		}
	}
	if draft.MaxTokens > 0 {
		request.MaxTokens = draft.MaxTokens
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", &models.AIRequestError{Kind: models.AIFailureSend, Err: err}
	}

	baseURL := d.selector.Current()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/send-to-ai", bytes.NewReader(body))
	if err != nil {
		return "", &models.AIRequestError{Kind: models.AIFailureSend, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+string(credential))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", common.NewRequestID())

	started := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		// The request left the client but nothing came back.
		return "", &models.AIRequestError{Kind: models.AIFailureNoResponse, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &models.AIRequestError{Kind: models.AIFailureNoResponse, Err: err}
	}

	if resp.StatusCode >= 400 {
		return "", &models.AIRequestError{
			Kind:       models.AIFailureServer,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(payload),
		}
	}

	var answer sendResponse
	if err := json.Unmarshal(payload, &answer); err != nil || answer.Message == "" {
		return "", &models.AIRequestError{
			Kind:       models.AIFailureServer,
			StatusCode: resp.StatusCode,
			Message:    "response did not contain a message",
			Err:        err,
		}
	}

	d.logger.Info().
		Str("provider", string(draft.Provider)).
		Int("documents", len(draft.SelectedIDs)).
		Str("duration", time.Since(started).String()).
		Msg("AI request completed")

	d.record(ctx, draft, answer.Message, baseURL)

	return answer.Message, nil
}

// serverMessage pulls a human-readable message out of an error payload,
// when the backend supplied one.
func serverMessage(payload []byte) string {
	var body errorResponse
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

func (d *Dispatcher) record(ctx context.Context, draft models.AIRequestDraft, response, endpoint string) {
	if d.history == nil {
		return
	}
	exchange := &models.Exchange{
		ID:          common.NewExchangeID(),
		Provider:    draft.Provider,
		Prompt:      draft.Prompt,
		DocumentIDs: append([]string(nil), draft.SelectedIDs...),
		Response:    response,
		Endpoint:    endpoint,
		CreatedAt:   time.Now(),
	}
	if err := d.history.Append(ctx, exchange); err != nil {
		d.logger.Warn().Str("error", err.Error()).Msg("Failed to record exchange in history")
	}
}

// Busy reports whether a submit is in flight
func (d *Dispatcher) Busy() bool {
	return d.busy.Load()
}

var _ interfaces.Dispatcher = (*Dispatcher)(nil)

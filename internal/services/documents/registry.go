package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/Jitesh17/docai/internal/interfaces"
	"github.com/Jitesh17/docai/internal/models"
)

// Registry is the single owner of document identity on the client: the
// authoritative list of persisted documents for the signed-in user, plus
// the extracted contents of the latest upload batch.
type Registry struct {
	session   interfaces.SessionManager
	selector  interfaces.EndpointSelector
	selection interfaces.SelectionTracker
	client    *http.Client
	logger    arbor.ILogger

	mu        sync.RWMutex
	documents []models.PersistedDocument
	extracted []string
}

// NewRegistry creates a document registry. The registry reconciles the
// selection tracker on every successful delete.
func NewRegistry(session interfaces.SessionManager, selector interfaces.EndpointSelector, selection interfaces.SelectionTracker, logger arbor.ILogger) *Registry {
	return &Registry{
		session:   session,
		selector:  selector,
		selection: selection,
		client:    &http.Client{},
		logger:    logger,
	}
}

// listResponse is the listing endpoint wire shape
type listResponse struct {
	Documents []models.PersistedDocument `json:"documents"`
}

// Refresh replaces the registry from the backend's listing endpoint. The
// swap is atomic: readers see either the previous list or the new one,
// never a partial merge. A response that arrives after an endpoint toggle
// belongs to the wrong server and is discarded.
func (r *Registry) Refresh(ctx context.Context) ([]models.PersistedDocument, error) {
	credential, err := r.session.ObtainCredential(ctx)
	if err != nil {
		return nil, err
	}

	epoch := r.selector.Epoch()
	baseURL := r.selector.Current()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/uploaded-documents", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build listing request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+string(credential))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read listing response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list documents: status %d", resp.StatusCode)
	}

	var listing listResponse
	if err := json.Unmarshal(payload, &listing); err != nil {
		return nil, fmt.Errorf("malformed listing response: %w", err)
	}

	if r.selector.Epoch() != epoch {
		// The endpoint changed while this request was in flight. The
		// result describes the previous server's registry and must not be
		// merged into state for the new one.
		r.logger.Warn().Str("base_url", baseURL).Msg("Discarding stale document listing after endpoint switch")
		return nil, fmt.Errorf("endpoint changed during refresh")
	}

	r.mu.Lock()
	r.documents = listing.Documents
	documents := r.copyDocumentsLocked()
	r.mu.Unlock()

	r.logger.Debug().Int("count", len(documents)).Msg("Document registry refreshed")
	return documents, nil
}

// ApplyUploadResult folds a completed upload batch into the registry: the
// extracted contents replace the previous batch wholesale, then a refresh
// picks up the newly persisted documents.
func (r *Registry) ApplyUploadResult(ctx context.Context, contents []string) error {
	if len(contents) == 0 {
		contents = []string{models.NoContentSentinel}
	}

	r.mu.Lock()
	r.extracted = append([]string(nil), contents...)
	r.mu.Unlock()

	if _, err := r.Refresh(ctx); err != nil {
		return fmt.Errorf("upload applied but listing refresh failed: %w", err)
	}
	return nil
}

// deleteRequest and deleteResponse are the delete endpoint wire shapes
type deleteRequest struct {
	DocumentIDs []string `json:"documentIds"`
}

type deleteResponse struct {
	Success bool `json:"success"`
}

// Remove deletes the given documents server-side. On success exactly the
// matching documents leave the registry and the same ids leave the
// selection; on failure both are left untouched.
func (r *Registry) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return models.ErrNoSelection
	}

	credential, err := r.session.ObtainCredential(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(deleteRequest{DocumentIDs: ids})
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrDeleteFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, r.selector.Current()+"/api/delete-documents", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrDeleteFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+string(credential))
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrDeleteFailed, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrDeleteFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", models.ErrDeleteFailed, resp.StatusCode)
	}

	var result deleteResponse
	if err := json.Unmarshal(payload, &result); err != nil || !result.Success {
		return fmt.Errorf("%w: server did not confirm deletion", models.ErrDeleteFailed)
	}

	removed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		removed[id] = struct{}{}
	}

	r.mu.Lock()
	kept := r.documents[:0]
	for _, doc := range r.documents {
		if _, gone := removed[doc.ID]; !gone {
			kept = append(kept, doc)
		}
	}
	r.documents = kept
	r.mu.Unlock()

	r.selection.RemoveIDs(ids)

	r.logger.Info().Int("deleted", len(ids)).Msg("Documents deleted")
	return nil
}

// Documents returns a copy of the persisted document list
func (r *Registry) Documents() []models.PersistedDocument {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyDocumentsLocked()
}

func (r *Registry) copyDocumentsLocked() []models.PersistedDocument {
	out := make([]models.PersistedDocument, len(r.documents))
	copy(out, r.documents)
	return out
}

// ExtractedContents returns a copy of the latest batch's contents, in
// upload order.
func (r *Registry) ExtractedContents() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.extracted))
	copy(out, r.extracted)
	return out
}

// Clear drops all session-scoped registry state. Invoked on sign-out:
// fetched documents are scoped to the identity that fetched them.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.documents = nil
	r.extracted = nil
	r.mu.Unlock()
}

var _ interfaces.DocumentRegistry = (*Registry)(nil)

package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/ternarybob/arbor"

	"github.com/Jitesh17/docai/internal/common"
	"github.com/Jitesh17/docai/internal/interfaces"
	"github.com/Jitesh17/docai/internal/models"
)

// Pipeline uploads a batch of raw files for server-side extraction. All
// files of a batch travel together in one multipart request and are
// extracted together; the backend answers with one content string per file
// in upload order.
type Pipeline struct {
	session  interfaces.SessionManager
	selector interfaces.EndpointSelector
	client   *http.Client
	logger   arbor.ILogger

	allowedExtensions []string
	busy              atomic.Bool
}

// NewPipeline creates an upload pipeline
func NewPipeline(session interfaces.SessionManager, selector interfaces.EndpointSelector, uploadConfig *common.UploadConfig, logger arbor.ILogger) *Pipeline {
	return &Pipeline{
		session:           session,
		selector:          selector,
		client:            &http.Client{},
		logger:            logger,
		allowedExtensions: uploadConfig.AllowedExtensions,
	}
}

// extractResponse is the extraction endpoint wire shape
type extractResponse struct {
	Contents []string `json:"contents"`
}

// Upload sends the batch and returns the extracted contents in upload
// order. Precondition failures and transport failures leave previously
// extracted content untouched; folding a successful result into the
// registry is the caller's job.
func (p *Pipeline) Upload(ctx context.Context, files []interfaces.UploadFile) ([]string, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, models.ErrBusy
	}
	defer p.busy.Store(false)

	if p.session.CurrentIdentity() == nil {
		return nil, models.ErrUnauthenticated
	}
	if len(files) == 0 {
		return nil, models.ErrNoFilesSelected
	}

	credential, err := p.session.ObtainCredential(ctx)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, file := range files {
		part, err := writer.CreateFormFile("files", filepath.Base(file.Name))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.selector.Current()+"/api/read-document", &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+string(credential))
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", models.ErrExtractionFailed, resp.StatusCode)
	}

	var extracted extractResponse
	if err := json.Unmarshal(payload, &extracted); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", models.ErrExtractionFailed, err)
	}

	p.logger.Info().Int("files", len(files)).Int("contents", len(extracted.Contents)).Msg("Batch extracted")
	return extracted.Contents, nil
}

// Busy reports whether an upload is in flight. Advisory: callers disable
// repeat submission while true, and Upload itself rejects overlap.
func (p *Pipeline) Busy() bool {
	return p.busy.Load()
}

// Accepts reports whether a filename matches the configured extension
// filter. A hint only; the server is the authority on what it extracts.
func (p *Pipeline) Accepts(name string) bool {
	if len(p.allowedExtensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range p.allowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

var _ interfaces.UploadPipeline = (*Pipeline)(nil)

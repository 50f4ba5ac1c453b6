package documents

import (
	"context"
	"encoding/json"
	"io"
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

func newTestPipeline(session interfaces.SessionManager, url string) *Pipeline {
	return NewPipeline(session, &stubSelector{url: url}, &common.UploadConfig{
		AllowedExtensions: []string{".pdf", ".docx", ".xlsx"},
	}, arbor.NewLogger())
}

func TestUploadRequiresSignIn(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	pipeline := newTestPipeline(&stubSession{}, server.URL)

	_, err := pipeline.Upload(context.Background(), []interfaces.UploadFile{{Name: "a.pdf", Content: []byte("x")}})
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	assert.Equal(t, int64(0), calls.Load())
}

func TestUploadRejectsEmptyBatch(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	pipeline := newTestPipeline(signedInSession(), server.URL)

	_, err := pipeline.Upload(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrNoFilesSelected)
	assert.Equal(t, int64(0), calls.Load())
}

func TestUploadBatchTravelsInOneRequest(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/read-document", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "report.pdf", files[0].Filename)
		assert.Equal(t, "notes.docx", files[1].Filename)

		part, err := files[0].Open()
		require.NoError(t, err)
		defer part.Close()
		content, err := io.ReadAll(part)
		require.NoError(t, err)
		assert.Equal(t, "pdf-bytes", string(content))

		json.NewEncoder(w).Encode(map[string][]string{
			"contents": {"report text", "notes text"},
		})
	}))
	defer server.Close()

	pipeline := newTestPipeline(signedInSession(), server.URL)

	contents, err := pipeline.Upload(context.Background(), []interfaces.UploadFile{
		{Name: "/tmp/report.pdf", Content: []byte("pdf-bytes")},
		{Name: "notes.docx", Content: []byte("docx-bytes")},
	})
	require.NoError(t, err)

	// One request for the whole batch, contents in upload order.
	assert.Equal(t, int64(1), requests.Load())
	assert.Equal(t, []string{"report text", "notes text"}, contents)
}

func TestUploadServerErrorWrapsExtractionFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	pipeline := newTestPipeline(signedInSession(), server.URL)

	_, err := pipeline.Upload(context.Background(), []interfaces.UploadFile{{Name: "a.pdf", Content: []byte("x")}})
	assert.ErrorIs(t, err, models.ErrExtractionFailed)
}

func TestUploadTransportErrorWrapsExtractionFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening

	pipeline := newTestPipeline(signedInSession(), server.URL)

	_, err := pipeline.Upload(context.Background(), []interfaces.UploadFile{{Name: "a.pdf", Content: []byte("x")}})
	assert.ErrorIs(t, err, models.ErrExtractionFailed)
}

func TestUploadMalformedResponseWrapsExtractionFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	pipeline := newTestPipeline(signedInSession(), server.URL)

	_, err := pipeline.Upload(context.Background(), []interfaces.UploadFile{{Name: "a.pdf", Content: []byte("x")}})
	assert.ErrorIs(t, err, models.ErrExtractionFailed)
}

func TestUploadRejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		json.NewEncoder(w).Encode(map[string][]string{"contents": {"text"}})
	}))
	defer server.Close()

	pipeline := newTestPipeline(signedInSession(), server.URL)

	done := make(chan error, 1)
	go func() {
		_, err := pipeline.Upload(context.Background(), []interfaces.UploadFile{{Name: "a.pdf", Content: []byte("x")}})
		done <- err
	}()

	<-entered
	assert.True(t, pipeline.Busy())

	// A second upload while one is in flight is rejected, not queued.
	_, err := pipeline.Upload(context.Background(), []interfaces.UploadFile{{Name: "b.pdf", Content: []byte("y")}})
	assert.ErrorIs(t, err, models.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, pipeline.Busy())
}

func TestAccepts(t *testing.T) {
	pipeline := newTestPipeline(signedInSession(), "http://localhost:1")

	assert.True(t, pipeline.Accepts("report.pdf"))
	assert.True(t, pipeline.Accepts("REPORT.PDF"))
	assert.True(t, pipeline.Accepts("/tmp/dir/notes.docx"))
	assert.False(t, pipeline.Accepts("image.png"))
	assert.False(t, pipeline.Accepts("noextension"))
}

func TestAcceptsEverythingWithoutFilter(t *testing.T) {
	pipeline := NewPipeline(signedInSession(), &stubSelector{url: "http://localhost:1"},
		&common.UploadConfig{}, arbor.NewLogger())

	assert.True(t, pipeline.Accepts("anything.xyz"))
}

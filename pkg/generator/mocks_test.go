package generator

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shouni/gemini-duo-kit/pkg/domain"
)

// --- Mocks ---

type mockEncoder struct {
	calls      int
	encodeFunc func(ctx context.Context, ref1, ref2 domain.ImageReference) (*domain.EncodedImage, *domain.EncodedImage, error)
}

func (m *mockEncoder) EncodePair(ctx context.Context, ref1, ref2 domain.ImageReference) (*domain.EncodedImage, *domain.EncodedImage, error) {
	m.calls++
	if m.encodeFunc != nil {
		return m.encodeFunc(ctx, ref1, ref2)
	}
	return &domain.EncodedImage{Data: "aW1nMQ==", MimeType: "image/png"},
		&domain.EncodedImage{Data: "aW1nMg==", MimeType: "image/jpeg"}, nil
}

// fakeSleeper は実時間を待たずに待機時間だけを記録します。
type fakeSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return nil
}

func (s *fakeSleeper) Waits() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.waits...)
}

type cannedResponse struct {
	status int
	body   string
}

// geminiStub は順番にレスポンスを返す Gemini API のスタブです。
type geminiStub struct {
	*httptest.Server

	mu        sync.Mutex
	responses []cannedResponse
	requests  []*http.Request
	bodies    [][]byte
}

func newGeminiStub(t *testing.T, responses ...cannedResponse) *geminiStub {
	t.Helper()
	stub := &geminiStub{responses: responses}
	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		stub.mu.Lock()
		idx := len(stub.requests)
		stub.requests = append(stub.requests, r)
		stub.bodies = append(stub.bodies, body)
		stub.mu.Unlock()

		if idx >= len(stub.responses) {
			t.Errorf("unexpected extra request #%d", idx+1)
			w.WriteHeader(http.StatusTeapot)
			return
		}
		res := stub.responses[idx]
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(res.status)
		_, _ = io.WriteString(w, res.body)
	}))
	t.Cleanup(stub.Close)
	return stub
}

func (s *geminiStub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// roundTripFunc は http.Client を使わずに HTTPClient を満たします。
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

const imageResponse = `{
  "candidates": [{
    "content": {"parts": [
      {"text": "Here is your image"},
      {"inlineData": {"mimeType": "image/png", "data": "aGVsbG8="}}
    ]},
    "finishReason": "STOP"
  }]
}`

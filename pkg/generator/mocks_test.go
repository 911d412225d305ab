package generator

import (
	"context"
	"sync"
	"time"

	"github.com/shouni/newspaper-image-kit/pkg/domain"
	"google.golang.org/genai"
)

// --- Mocks ---

// pngHeader は http.DetectContentType が image/png と判定する最小のバイト列です。
var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

type fakeSettings struct {
	apiKey    string
	style     domain.ImageStyle
	signature string
}

func (f *fakeSettings) APIKey() string                { return f.apiKey }
func (f *fakeSettings) ImageStyle() domain.ImageStyle { return f.style }
func (f *fakeSettings) Signature() string             { return f.signature }

// fakeModels は ContentGenerator のモックで、受け取ったリクエストを記録するのだ。
type fakeModels struct {
	mu       sync.Mutex
	calls    int
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig

	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

// factoryFor は常に models を返す ClientFactory を作り、渡された API キーを記録するのだ。
func factoryFor(models ContentGenerator, gotKey *string) ClientFactory {
	return func(ctx context.Context, apiKey string) (ContentGenerator, error) {
		if gotKey != nil {
			*gotKey = apiKey
		}
		return models, nil
	}
}

type fakePreparer struct {
	part    *genai.Part
	lastURL string
}

func (f *fakePreparer) PrepareImagePart(ctx context.Context, rawURL string) *genai.Part {
	f.lastURL = rawURL
	return f.part
}

type mockHTTPClient struct {
	data  []byte
	err   error
	calls int
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.calls++
	return m.data, m.err
}

type mockCache struct {
	data map[string]any
}

func (m *mockCache) Get(key string) (any, bool) {
	val, ok := m.data[key]
	return val, ok
}

func (m *mockCache) Set(key string, value any, d time.Duration) {
	m.data[key] = value
}

func inlineImageResponse(mimeType string, data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}},
			},
		}},
	}
}

func textResponse(texts ...string) *genai.GenerateContentResponse {
	parts := make([]*genai.Part, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, &genai.Part{Text: t})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

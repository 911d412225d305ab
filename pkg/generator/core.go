package generator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/newspaper-image-kit/pkg/imgutil"
	"google.golang.org/genai"
)

// GeminiImageCore は参照画像の取得・圧縮・キャッシュを担当する基盤クラスです。
type GeminiImageCore struct {
	httpClient HTTPClient
	cache      ImageCacher
	expiration time.Duration
	checkURL   func(rawURL string) (bool, error)
}

// NewGeminiImageCore は依存関係を注入して GeminiImageCore を初期化します。
func NewGeminiImageCore(httpClient HTTPClient, cache ImageCacher, cacheTTL time.Duration) (*GeminiImageCore, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	// cache は nil を許容（キャッシュなし動作）

	return &GeminiImageCore{
		httpClient: httpClient,
		cache:      cache,
		expiration: cacheTTL,
		checkURL:   IsSafeURL,
	}, nil
}

// PrepareImagePart は URL から画像を準備して genai.Part に変換します。
func (c *GeminiImageCore) PrepareImagePart(ctx context.Context, rawURL string) *genai.Part {
	cacheKey := cacheKeyReferenceImage + rawURL
	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			if data, ok := cached.([]byte); ok {
				return c.toPart(data)
			}
			slog.WarnContext(ctx, "キャッシュデータが不正な型です", "url", rawURL, "type", fmt.Sprintf("%T", cached))
		}
	}

	data, err := c.fetchImageData(ctx, rawURL)
	if err != nil {
		slog.WarnContext(ctx, "参照画像の取得に失敗しました。テキストのみで続行します", "url", rawURL, "error", err)
		return nil
	}

	finalData := data
	if UseImageCompression {
		finalData, _ = imgutil.ShrinkForUpload(data, ImageCompressionQuality)
	}

	part := c.toPart(finalData)
	if part != nil && c.cache != nil {
		c.cache.Set(cacheKey, finalData, c.expiration)
	}
	return part
}

func (c *GeminiImageCore) fetchImageData(ctx context.Context, rawURL string) ([]byte, error) {
	safe, err := c.checkURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}
	if !safe {
		return nil, fmt.Errorf("安全ではないURLが指定されました: %s", rawURL)
	}
	return c.httpClient.FetchBytes(ctx, rawURL)
}

// toPart はバイト列を genai.Part (InlineData) に変換します。
func (c *GeminiImageCore) toPart(data []byte) *genai.Part {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		slog.Warn("MIMEタイプが画像ではないためPartに変換できませんでした", "detected_mime_type", mimeType)
		return nil
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}
}

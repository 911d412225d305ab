package generator

import (
	"context"
	"time"

	"github.com/shouni/newspaper-image-kit/pkg/domain"
	"google.golang.org/genai"
)

// ContentGenerator は genai.Models のうち、このパッケージが利用する部分です。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ClientFactory は呼び出し時点の API キーで ContentGenerator を作成します。
// API キーは設定画面でいつでも変わるため、生成のたびに作り直します。
type ClientFactory func(ctx context.Context, apiKey string) (ContentGenerator, error)

// SettingsReader は生成時に参照する設定です。settings.Store が満たします。
type SettingsReader interface {
	APIKey() string
	ImageStyle() domain.ImageStyle
	Signature() string
}

// ReferenceImagePreparer は参照画像URLから送信用の画像パーツを作成します。
type ReferenceImagePreparer interface {
	// PrepareImagePart は、指定された画像URLから後続処理で利用する画像パーツを作成します。
	// 取得できない場合は nil を返し、生成はテキストのみで続行します。
	PrepareImagePart(ctx context.Context, rawURL string) *genai.Part
}

// ImageCacher は、画像をキャッシュするためのインターフェースです。
type ImageCacher interface {
	// Get は、指定されたキーに紐づくアイテムを取得します。
	Get(key string) (any, bool)
	// Set は、指定されたキーと値、有効期限でアイテムを保存します。
	Set(key string, value any, d time.Duration)
}

// HTTPClient は、HTTPリクエストを実行し、URLからデータを取得するためのインターフェースです。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

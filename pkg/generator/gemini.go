package generator

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/shouni/newspaper-image-kit/pkg/domain"
	"github.com/shouni/newspaper-image-kit/pkg/prompt"
	"google.golang.org/genai"
)

// EndpointConfig は生成エンドポイントの接続先です。
// リクエストは {BaseURL}/{APIVersion}/models/{model}:generateContent に送られます。
type EndpointConfig struct {
	BaseURL    string
	APIVersion string
}

// NewGenaiFactory は Bearer 認証ヘッダーを付けた genai クライアントを作る ClientFactory を返します。
func NewGenaiFactory(endpoint EndpointConfig) ClientFactory {
	return func(ctx context.Context, apiKey string) (ContentGenerator, error) {
		headers := make(http.Header)
		headers.Set("Authorization", "Bearer "+apiKey)

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{
				BaseURL:    endpoint.BaseURL,
				APIVersion: endpoint.APIVersion,
				Headers:    headers,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("genai クライアントの作成に失敗しました: %w", err)
		}
		return client.Models, nil
	}
}

// Client は手抄報画像の生成を担当する Generation Client です。
type Client struct {
	settings  SettingsReader
	newModels ClientFactory
	refImages ReferenceImagePreparer
	model     string
}

// NewClient は Client を初期化します。refImages は nil を許容します（参照画像URL非対応）。
func NewClient(settings SettingsReader, factory ClientFactory, refImages ReferenceImagePreparer, model string) (*Client, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings is required")
	}
	if factory == nil {
		return nil, fmt.Errorf("factory (ClientFactory) is required")
	}
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		settings:  settings,
		newModels: factory,
		refImages: refImages,
		model:     model,
	}, nil
}

// HasAPIKey は API キーが設定済みかを返します。
func (c *Client) HasAPIKey() bool {
	return c.settings.APIKey() != ""
}

// Generate はユーザー入力から画像を生成し、そのまま表示できる画像参照を返します。
// 失敗した場合のエラーは常に *domain.GenerationError です。リトライは行いません。
func (c *Client) Generate(ctx context.Context, text string, opts *domain.GenerateOptions) (string, error) {
	apiKey, err := c.requireAPIKey()
	if err != nil {
		return "", err
	}
	return c.generate(ctx, apiKey, text, opts)
}

// GenerateWithCallbacks は Generate をコールバック形式で実行します。
//
// API キーが未設定の場合は OnStart を呼ばずに OnError だけを同期的に呼び、通信も行いません。
// それ以外の場合は I/O の前に OnStart を1回呼び、その後 OnComplete か OnError のどちらかを1回だけ呼びます。
func (c *Client) GenerateWithCallbacks(ctx context.Context, text string, cb Callbacks, opts *domain.GenerateOptions) {
	apiKey, err := c.requireAPIKey()
	if err != nil {
		cb.fail(UserMessage(err))
		return
	}

	cb.start()

	imageRef, err := c.generate(ctx, apiKey, text, opts)
	if err != nil {
		cb.fail(UserMessage(err))
		return
	}
	cb.complete(imageRef)
}

func (c *Client) requireAPIKey() (string, error) {
	apiKey := c.settings.APIKey()
	if apiKey == "" {
		return "", &domain.GenerationError{Kind: domain.KindConfiguration, Message: MsgMissingAPIKey}
	}
	return apiKey, nil
}

func (c *Client) generate(ctx context.Context, apiKey, text string, opts *domain.GenerateOptions) (string, error) {
	parts, hasBaseImage, err := c.imageParts(ctx, opts)
	if err != nil {
		return "", err
	}

	instruction := prompt.Build(text, c.settings.ImageStyle(), c.settings.Signature(), hasBaseImage)
	parts = append(parts, &genai.Part{Text: instruction})

	models, err := c.newModels(ctx, apiKey)
	if err != nil {
		return "", &domain.GenerationError{Kind: domain.KindConfiguration, Message: MsgClientInit, Err: err}
	}

	aspectRatio := opts.ResolvedAspectRatio()
	slog.InfoContext(ctx, "画像生成をリクエストします",
		"model", c.model, "aspect_ratio", aspectRatio, "image_to_image", hasBaseImage, "parts", len(parts))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := models.GenerateContent(ctx, c.model, contents, buildConfig(aspectRatio))
	if err != nil {
		genErr := classifyError(err)
		slog.WarnContext(ctx, "画像生成リクエストが失敗しました", "kind", genErr.Kind, "error", err)
		return "", genErr
	}

	imageRef, ok := ExtractImage(resp)
	if !ok {
		logUnextractable(ctx, resp)
		return "", &domain.GenerationError{Kind: domain.KindExtraction, Message: MsgNoImage}
	}
	return imageRef, nil
}

// imageParts はテキストより前に置く画像パーツを組み立てます。
// inline の参照画像が優先され、無い場合のみ参照画像URLを取得します。
func (c *Client) imageParts(ctx context.Context, opts *domain.GenerateOptions) ([]*genai.Part, bool, error) {
	parts := make([]*genai.Part, 0, 2)

	if opts.HasBaseImage() {
		data, err := base64.StdEncoding.DecodeString(opts.BaseImage)
		if err != nil {
			return nil, false, &domain.GenerationError{Kind: domain.KindConfiguration, Message: MsgInvalidBaseImage, Err: err}
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: opts.BaseImageMIMEType, Data: data}})
		return parts, true, nil
	}

	if opts != nil && opts.ReferenceURL != "" && c.refImages != nil {
		if part := c.refImages.PrepareImagePart(ctx, opts.ReferenceURL); part != nil {
			return append(parts, part), true, nil
		}
	}
	return parts, false, nil
}

func buildConfig(aspectRatio string) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseModalities: []string{responseModalityImage},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: aspectRatio,
			ImageSize:   DefaultImageSize,
		},
	}
}

// logUnextractable は画像が見つからなかったレスポンスを診断用に記録します。
func logUnextractable(ctx context.Context, resp *genai.GenerateContentResponse) {
	attrs := []any{}
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		attrs = append(attrs, "finish_reason", resp.Candidates[0].FinishReason)
	}
	if raw, err := sonic.MarshalString(resp); err == nil {
		attrs = append(attrs, "payload", excerpt(raw, maxLoggedPayloadRunes))
	}
	slog.WarnContext(ctx, "レスポンスから画像を抽出できませんでした", attrs...)
}

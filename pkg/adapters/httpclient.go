package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
)

// NewRestyClient は JSON コーデックに sonic を使う resty クライアントを作成します。
func NewRestyClient(timeout time.Duration) *resty.Client {
	client := resty.New().SetTimeout(timeout)
	client.JSONMarshal = sonic.Marshal
	client.JSONUnmarshal = sonic.Unmarshal
	return client
}

// HTTPClient は参照画像などをURLから取得するクライアントです。
type HTTPClient struct {
	client *resty.Client
}

// NewHTTPClient は resty クライアントをラップした HTTPClient を作成します。
func NewHTTPClient(client *resty.Client) *HTTPClient {
	return &HTTPClient{client: client}
}

// FetchBytes は GET でレスポンスボディを取得します。2xx 以外はエラーです。
func (h *HTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := h.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("リクエストに失敗しました: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("予期しないステータスコードです: %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

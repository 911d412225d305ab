// Package usercenter は電話番号から API キーを発行・取得するユーザーセンターのクライアントです。
package usercenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrInvalidPhone は電話番号の形式が正しくない場合に返されます。
	ErrInvalidPhone = errors.New("请输入有效的手机号")
	// ErrRegisteredElsewhere は他のチャネルで登録済みのため API キーを受け取れない場合に返されます。
	// 利用者に API キーを手動で入力してもらう必要があります。
	ErrRegisteredElsewhere = errors.New("您已在其它渠道注册过，没有赠送额度。请手动输入您的 API Key")
)

var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// registeredElsewhereMarkers は登録APIのメッセージのうち、他チャネル登録済みを示す文言です。
var registeredElsewhereMarkers = []string{"其它渠道", "别的渠道", "已经存在"}

// Response はユーザーセンターAPIの共通レスポンスです。
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Code      int    `json:"code"`
	Result    Result `json:"result"`
	Timestamp int64  `json:"timestamp"`
}

type Result struct {
	APIKey string `json:"apiKey"`
}

// OK は API キーを含む成功レスポンスかを返します。
func (r *Response) OK() bool {
	return r != nil && r.Success && r.Result.APIKey != ""
}

type registerRequest struct {
	InviteCode string `json:"inviteCode"`
	Phone      string `json:"phone"`
}

// KeyWriter は取得した API キーの保存先です。settings.Store が満たします。
type KeyWriter interface {
	SetAPIKey(apiKey string)
}

// Client はユーザーセンターAPIのクライアントです。
type Client struct {
	http       *resty.Client
	baseURL    string
	inviteCode string
}

// NewClient は Client を初期化します。
func NewClient(httpClient *resty.Client, baseURL, inviteCode string) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	return &Client{
		http:       httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		inviteCode: inviteCode,
	}, nil
}

// ValidatePhone は中国本土の携帯電話番号の形式かを検証します。
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(strings.TrimSpace(phone)) {
		return ErrInvalidPhone
	}
	return nil
}

// RegisterUser は電話番号でユーザーを登録します。
// 業務上の失敗は Response.Success=false で表され、error は通信やデコードの失敗のみです。
func (c *Client) RegisterUser(ctx context.Context, phone string) (*Response, error) {
	var out Response
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(registerRequest{InviteCode: c.inviteCode, Phone: strings.TrimSpace(phone)}).
		SetResult(&out).
		SetError(&out).
		Post(c.baseURL + "/registerUser")
	if err != nil {
		return nil, fmt.Errorf("ユーザー登録リクエストに失敗しました: %w", err)
	}
	return c.decode(resp, &out)
}

// GetUserKey は登録済みユーザーの API キーを取得します。
func (c *Client) GetUserKey(ctx context.Context, phone string) (*Response, error) {
	var out Response
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"phone":      strings.TrimSpace(phone),
			"inviteCode": c.inviteCode,
		}).
		SetResult(&out).
		SetError(&out).
		Get(c.baseURL + "/getUserKey")
	if err != nil {
		return nil, fmt.Errorf("API キー取得リクエストに失敗しました: %w", err)
	}
	return c.decode(resp, &out)
}

func (c *Client) decode(resp *resty.Response, out *Response) (*Response, error) {
	if resp.IsError() && out.Message == "" {
		return nil, fmt.Errorf("予期しないステータスコードです: %d", resp.StatusCode())
	}
	return out, nil
}

// Login は登録を試み、API キーを取得して keys に保存します。
//
// 登録に成功すればそのキーを使います。他チャネルで登録済みと判定された場合は
// ErrRegisteredElsewhere を返し、それ以外の失敗では既存ユーザーとしてキーの取得を試みます。
func (c *Client) Login(ctx context.Context, phone string, keys KeyWriter) (string, error) {
	if err := ValidatePhone(phone); err != nil {
		return "", err
	}
	if keys == nil {
		return "", fmt.Errorf("keys (KeyWriter) is required")
	}

	registered, err := c.RegisterUser(ctx, phone)
	if err != nil {
		return "", err
	}
	if registered.OK() {
		keys.SetAPIKey(registered.Result.APIKey)
		slog.InfoContext(ctx, "ユーザー登録に成功しました")
		return registered.Result.APIKey, nil
	}
	if !registered.Success && isRegisteredElsewhere(registered.Message) {
		slog.InfoContext(ctx, "他チャネルで登録済みのユーザーです", "message", registered.Message)
		return "", ErrRegisteredElsewhere
	}

	existing, err := c.GetUserKey(ctx, phone)
	if err != nil {
		return "", err
	}
	if !existing.OK() {
		msg := existing.Message
		if msg == "" {
			msg = "登录失败"
		}
		return "", errors.New(msg)
	}
	keys.SetAPIKey(existing.Result.APIKey)
	slog.InfoContext(ctx, "既存ユーザーの API キーを取得しました")
	return existing.Result.APIKey, nil
}

func isRegisteredElsewhere(message string) bool {
	for _, marker := range registeredElsewhereMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}

package usercenter

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/shouni/newspaper-image-kit/pkg/adapters"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyRecorder struct {
	saved []string
}

func (k *keyRecorder) SetAPIKey(apiKey string) {
	k.saved = append(k.saved, apiKey)
}

// fakeUserCenter は registerUser と getUserKey の応答を差し替えられるテスト用サーバーなのだ。
type fakeUserCenter struct {
	register   string
	getUserKey string
	status     int

	registerCalls   int
	getUserKeyCalls int
	lastRegister    registerRequest
	lastQuery       map[string]string
}

func (f *fakeUserCenter) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/registerUser", func(w http.ResponseWriter, r *http.Request) {
		f.registerCalls++
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, sonic.Unmarshal(body, &f.lastRegister))
		f.write(w, f.register)
	})
	mux.HandleFunc("/getUserKey", func(w http.ResponseWriter, r *http.Request) {
		f.getUserKeyCalls++
		assert.Equal(t, http.MethodGet, r.Method)
		f.lastQuery = map[string]string{
			"phone":      r.URL.Query().Get("phone"),
			"inviteCode": r.URL.Query().Get("inviteCode"),
		}
		f.write(w, f.getUserKey)
	})
	return mux
}

func (f *fakeUserCenter) write(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	_, _ = io.WriteString(w, body)
}

func newTestClient(t *testing.T, f *fakeUserCenter) *Client {
	t.Helper()
	server := httptest.NewServer(f.handler(t))
	t.Cleanup(server.Close)

	client, err := NewClient(adapters.NewRestyClient(5*time.Second), server.URL+"/", "INVITE1")
	require.NoError(t, err)
	return client
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("13812345678"))
	assert.NoError(t, ValidatePhone(" 19912345678 "))

	for _, phone := range []string{"", "12812345678", "1381234567", "138123456789", "abc", "+8613812345678"} {
		assert.ErrorIs(t, ValidatePhone(phone), ErrInvalidPhone, phone)
	}
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(nil, "http://example.com", "")
	assert.Error(t, err)
	_, err = NewClient(adapters.NewRestyClient(time.Second), "", "")
	assert.Error(t, err)
}

func TestClient_RegisterUser(t *testing.T) {
	f := &fakeUserCenter{register: `{"success":true,"message":"ok","code":200,"result":{"apiKey":"sk-new"},"timestamp":1}`}
	client := newTestClient(t, f)

	resp, err := client.RegisterUser(context.Background(), " 13812345678 ")

	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "sk-new", resp.Result.APIKey)
	assert.Equal(t, registerRequest{InviteCode: "INVITE1", Phone: "13812345678"}, f.lastRegister)
}

func TestClient_GetUserKey(t *testing.T) {
	f := &fakeUserCenter{getUserKey: `{"success":true,"message":"","code":200,"result":{"apiKey":"sk-old"},"timestamp":1}`}
	client := newTestClient(t, f)

	resp, err := client.GetUserKey(context.Background(), "13812345678")

	require.NoError(t, err)
	assert.Equal(t, "sk-old", resp.Result.APIKey)
	assert.Equal(t, map[string]string{"phone": "13812345678", "inviteCode": "INVITE1"}, f.lastQuery)
}

func TestClient_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("登録に成功したらそのキーを保存する", func(t *testing.T) {
		f := &fakeUserCenter{register: `{"success":true,"result":{"apiKey":"sk-new"}}`}
		client := newTestClient(t, f)
		keys := &keyRecorder{}

		key, err := client.Login(ctx, "13812345678", keys)

		require.NoError(t, err)
		assert.Equal(t, "sk-new", key)
		assert.Equal(t, []string{"sk-new"}, keys.saved)
		assert.Equal(t, 0, f.getUserKeyCalls)
	})

	t.Run("他チャネルで登録済みならキーを取得せずに専用エラー", func(t *testing.T) {
		for _, msg := range []string{"用户已在其它渠道注册", "该手机号在别的渠道注册", "用户已经存在"} {
			f := &fakeUserCenter{register: `{"success":false,"message":"` + msg + `"}`}
			client := newTestClient(t, f)
			keys := &keyRecorder{}

			_, err := client.Login(ctx, "13812345678", keys)

			assert.ErrorIs(t, err, ErrRegisteredElsewhere, msg)
			assert.Empty(t, keys.saved)
			assert.Equal(t, 0, f.getUserKeyCalls)
		}
	})

	t.Run("その他の登録失敗では既存ユーザーのキーを取得する", func(t *testing.T) {
		f := &fakeUserCenter{
			register:   `{"success":false,"message":"用户已注册"}`,
			getUserKey: `{"success":true,"result":{"apiKey":"sk-old"}}`,
		}
		client := newTestClient(t, f)
		keys := &keyRecorder{}

		key, err := client.Login(ctx, "13812345678", keys)

		require.NoError(t, err)
		assert.Equal(t, "sk-old", key)
		assert.Equal(t, []string{"sk-old"}, keys.saved)
		assert.Equal(t, 1, f.getUserKeyCalls)
	})

	t.Run("キー取得にも失敗したらサーバーのメッセージを返す", func(t *testing.T) {
		f := &fakeUserCenter{
			register:   `{"success":false,"message":"failed"}`,
			getUserKey: `{"success":false,"message":"用户不存在"}`,
		}
		client := newTestClient(t, f)

		_, err := client.Login(ctx, "13812345678", &keyRecorder{})

		require.Error(t, err)
		assert.Equal(t, "用户不存在", err.Error())
	})

	t.Run("不正な電話番号では通信しない", func(t *testing.T) {
		f := &fakeUserCenter{}
		client := newTestClient(t, f)

		_, err := client.Login(ctx, "123", &keyRecorder{})

		assert.ErrorIs(t, err, ErrInvalidPhone)
		assert.Equal(t, 0, f.registerCalls)
	})

	t.Run("メッセージの無いエラーステータスは通信エラー", func(t *testing.T) {
		f := &fakeUserCenter{register: `{}`, status: http.StatusBadGateway}
		client := newTestClient(t, f)

		_, err := client.Login(ctx, "13812345678", &keyRecorder{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})
}

package generator

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/shouni/newspaper-image-kit/pkg/domain"
	"google.golang.org/genai"
)

// networkFailureMarkers は通信層の失敗を示すエラーメッセージの断片です。
var networkFailureMarkers = []string{
	"Failed to fetch",
	"connection refused",
	"no such host",
	"connection reset",
	"i/o timeout",
}

// classifyError は genai の呼び出しエラーを protocol か transport に分類します。
func classifyError(err error) *domain.GenerationError {
	if code, body, ok := apiErrorDetail(err); ok {
		return &domain.GenerationError{
			Kind:    domain.KindProtocol,
			Message: fmt.Sprintf("API 请求失败: %d - %s", code, excerpt(body, maxBodyExcerptRunes)),
			Err:     err,
		}
	}
	return &domain.GenerationError{Kind: domain.KindTransport, Message: FriendlyMessage(err), Err: err}
}

func apiErrorDetail(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErrorBody(apiErr), true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrorBody(*apiErrPtr), true
	}
	return 0, "", false
}

func apiErrorBody(apiErr genai.APIError) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return apiErr.Status
}

// FriendlyMessage は通信エラーを利用者向けの文言に変換します。
// 既知のパターンに当てはまらない場合は元のメッセージをそのまま返します。
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()

	if strings.Contains(msg, "CORS") {
		return MsgCORSBlocked
	}
	if isNetworkFailure(err) {
		return MsgNetworkFailed
	}
	if strings.Contains(msg, "NetworkError") {
		return MsgNetworkError
	}
	return msg
}

func isNetworkFailure(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	for _, marker := range networkFailureMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// UserMessage はエラーから UI に表示する文言を取り出します。
func UserMessage(err error) string {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return genErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

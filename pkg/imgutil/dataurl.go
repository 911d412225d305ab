package imgutil

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// base64 化された画像の先頭文字列（マジックバイト）と MIME タイプの対応です。
// 判定は上から順に行います。
var base64Signatures = []struct {
	prefix   string
	mimeType string
}{
	{prefix: "/9j/", mimeType: "image/jpeg"},
	{prefix: "iVBOR", mimeType: "image/png"},
	{prefix: "R0lGOD", mimeType: "image/gif"},
	{prefix: "UklGR", mimeType: "image/webp"},
}

// ErrNotDataURL は data URL として解釈できない文字列に対して返されます。
var ErrNotDataURL = errors.New("data URL ではありません")

// DataURL は MIME タイプと base64 ペイロードから data URL を組み立てます。
func DataURL(mimeType, payload string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, payload)
}

// EncodeDataURL はバイト列を base64 化して data URL を組み立てます。
func EncodeDataURL(mimeType string, data []byte) string {
	return DataURL(mimeType, base64.StdEncoding.EncodeToString(data))
}

// SniffBase64MIME は base64 文字列の先頭から画像フォーマットを推定します。
func SniffBase64MIME(payload string) (string, bool) {
	for _, sig := range base64Signatures {
		if strings.HasPrefix(payload, sig.prefix) {
			return sig.mimeType, true
		}
	}
	return "", false
}

// IsDataURL は文字列が data URL 形式で始まるかを返します。
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURL は base64 形式の data URL を MIME タイプとバイト列に分解します。
func ParseDataURL(s string) (string, []byte, error) {
	if !IsDataURL(s) {
		return "", nil, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("base64 以外のエンコーディングは未対応です: %w", ErrNotDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("base64 のデコードに失敗しました: %w", err)
	}
	return mimeType, data, nil
}

// ExtensionFor は MIME タイプに対応するファイル拡張子を返します。不明な場合は ".png" です。
func ExtensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

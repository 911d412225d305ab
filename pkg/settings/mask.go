package settings

import "strings"

// MaskAPIKey は画面表示用に API キーを伏せ字にします。
// 短いキーほど多くの文字を隠し、13文字以上では先頭8文字と末尾4文字だけを残します。
func MaskAPIKey(key string) string {
	runes := []rune(key)
	n := len(runes)
	switch {
	case n == 0:
		return ""
	case n <= 4:
		return strings.Repeat("*", n)
	case n <= 8:
		return string(runes[:2]) + strings.Repeat("*", n-2)
	case n <= 12:
		return string(runes[:4]) + strings.Repeat("*", n-4)
	default:
		return string(runes[:8]) + strings.Repeat("*", n-12) + string(runes[n-4:])
	}
}

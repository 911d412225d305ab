package generator

import (
	"regexp"
	"strings"

	"github.com/shouni/newspaper-image-kit/pkg/imgutil"
	"google.golang.org/genai"
)

const defaultInlineMIMEType = "image/png"

var (
	dataURLPattern       = regexp.MustCompile(`data:image/[A-Za-z0-9.+-]+;base64,[A-Za-z0-9+/=]+`)
	markdownImagePattern = regexp.MustCompile(`!\[.*?\]\((.*?)\)`)
	imageURLPattern      = regexp.MustCompile(`(?i)https?://[^\s"'<>]+\.(png|jpg|jpeg|gif|webp)(\?[^\s"'<>]*)?`)
)

// ExtractImage はレスポンスから画像参照（data URL または URL）を取り出します。
//
// 最初の候補のパーツを順に調べ、パーツごとに InlineData を最優先し、
// 無ければテキストから ExtractFromText の順序で探します。最初に見つかったものを返します。
func ExtractImage(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	// 最初の候補 (Candidate) のみを利用する。
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return "", false
	}

	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = defaultInlineMIMEType
			}
			return imgutil.EncodeDataURL(mimeType, part.InlineData.Data), true
		}
		if part.Text != "" {
			if ref, ok := ExtractFromText(part.Text); ok {
				return ref, true
			}
		}
	}
	return "", false
}

// ExtractFromText はテキストに埋め込まれた画像参照を探します。
//
// 判定順は data URL、base64 のマジックバイト、Markdown の画像記法、
// 画像拡張子で終わる http(s) URL です。
func ExtractFromText(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	if strings.Contains(text, "data:image") {
		if m := dataURLPattern.FindString(text); m != "" {
			return m, true
		}
		return text, true
	}

	trimmed := strings.TrimSpace(text)
	if mimeType, ok := imgutil.SniffBase64MIME(trimmed); ok {
		return imgutil.DataURL(mimeType, trimmed), true
	}

	if m := markdownImagePattern.FindStringSubmatch(text); m != nil && m[1] != "" {
		return m[1], true
	}

	if m := imageURLPattern.FindString(text); m != "" {
		return m, true
	}

	return "", false
}

package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestExtractImage(t *testing.T) {
	t.Run("パーツは先頭から順に評価される", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{Text: "here: https://example.com/a.png"},
					{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}},
				}},
			}},
		}
		ref, ok := ExtractImage(resp)
		assert.True(t, ok)
		assert.Equal(t, "https://example.com/a.png", ref)

		resp.Candidates[0].Content.Parts[0], resp.Candidates[0].Content.Parts[1] =
			resp.Candidates[0].Content.Parts[1], resp.Candidates[0].Content.Parts[0]
		ref, ok = ExtractImage(resp)
		assert.True(t, ok)
		assert.Equal(t, "data:image/jpeg;base64,/9j/", ref)
	})

	t.Run("同じパーツにInlineDataとテキストがあればInlineDataが優先される", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{
					Text:       "![other](https://example.com/other.png)",
					InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{0, 0, 0}},
				}}},
			}},
		}
		ref, ok := ExtractImage(resp)
		assert.True(t, ok)
		assert.Equal(t, "data:image/png;base64,AAAA", ref)
	})

	t.Run("MIMEタイプが空ならimage/pngになる", func(t *testing.T) {
		ref, ok := ExtractImage(inlineImageResponse("", []byte{0, 0, 0}))
		assert.True(t, ok)
		assert.Equal(t, "data:image/png;base64,AAAA", ref)
	})

	t.Run("空のInlineDataは無視して次のパーツを見る", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{
					{InlineData: &genai.Blob{MIMEType: "image/png"}},
					{Text: "![x](https://cdn.example.com/x)"},
				}},
			}},
		}
		ref, ok := ExtractImage(resp)
		assert.True(t, ok)
		assert.Equal(t, "https://cdn.example.com/x", ref)
	})

	t.Run("候補が無い、または画像が無い場合は失敗する", func(t *testing.T) {
		cases := map[string]*genai.GenerateContentResponse{
			"nil":        nil,
			"候補なし":       {},
			"contentなし":  {Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}},
			"プレーンテキストのみ": textResponse("I cannot draw that, sorry."),
		}
		for name, resp := range cases {
			t.Run(name, func(t *testing.T) {
				ref, ok := ExtractImage(resp)
				assert.False(t, ok)
				assert.Empty(t, ref)
			})
		}
	})
}

func TestExtractFromText(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{
			name:   "data URLを含む文章からはdata URL部分だけを取り出す",
			text:   "生成しました: data:image/png;base64,iVBORw0KGgo= です",
			want:   "data:image/png;base64,iVBORw0KGgo=",
			wantOK: true,
		},
		{
			name:   "生のbase64 (JPEG)",
			text:   "/9j/4AAQSkZJRg==",
			want:   "data:image/jpeg;base64,/9j/4AAQSkZJRg==",
			wantOK: true,
		},
		{
			name:   "前後の空白は取り除いて判定する",
			text:   "\n  iVBORw0KGgo=\n",
			want:   "data:image/png;base64,iVBORw0KGgo=",
			wantOK: true,
		},
		{
			name:   "GIF",
			text:   "R0lGODlhAQABAAAAACw=",
			want:   "data:image/gif;base64,R0lGODlhAQABAAAAACw=",
			wantOK: true,
		},
		{
			name:   "WebP",
			text:   "UklGRiQAAABXRUJQ",
			want:   "data:image/webp;base64,UklGRiQAAABXRUJQ",
			wantOK: true,
		},
		{
			name:   "Markdownの画像記法",
			text:   "完成です！ ![手抄报](https://img.example.com/p/123) どうぞ",
			want:   "https://img.example.com/p/123",
			wantOK: true,
		},
		{
			name:   "Markdownは画像URLより優先される",
			text:   "https://a.example.com/first.png ![b](https://b.example.com/second)",
			want:   "https://b.example.com/second",
			wantOK: true,
		},
		{
			name:   "画像拡張子で終わるURL",
			text:   "ここにあります https://example.com/out/result.webp?sig=abc 以上",
			want:   "https://example.com/out/result.webp?sig=abc",
			wantOK: true,
		},
		{
			name:   "画像でないURLは対象外",
			text:   "see https://example.com/index.html",
			wantOK: false,
		},
		{
			name:   "ただの文章",
			text:   "Sorry, I can only produce text right now.",
			wantOK: false,
		},
		{
			name:   "空文字",
			text:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFromText(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

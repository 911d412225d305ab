// Package prompt は生成モデルに送る指示文を組み立てます。
// すべての関数は副作用のない純粋関数です。
package prompt

import (
	"fmt"
	"strings"

	"github.com/shouni/newspaper-image-kit/pkg/domain"
)

// MaxInputRunes は UI 側で制限するユーザー入力の最大文字数です。
const MaxInputRunes = 200

// signatureSuffix は署名の後ろに付けるクレジット表記です。
const signatureSuffix = "@Gemini 3"

var styleDescriptions = map[domain.ImageStyle]string{
	domain.StyleHandwritten: "手绘手抄报风格，彩色铅笔和水彩笔的质感，线条自然活泼",
	domain.StyleWireframe:   "简洁的线框插画风格，黑色线条勾勒轮廓，留白适合孩子涂色",
	domain.StyleBlackboard:  "黑板报风格，深绿色黑板背景，彩色粉笔字和粉笔画",
	domain.StyleAnime:       "日系动漫插画风格，角色可爱，色彩明亮饱满",
}

const textToImageTemplate = `请为幼儿园小朋友生成一张精美的手抄报图片。主题是：%s

画面风格：%s

要求：
- 画面色彩鲜艳、活泼可爱，适合儿童
- 包含可爱的卡通元素和装饰边框
- 内容适合幼儿园年龄段的孩子
- 图片风格要温馨、童趣
- 可以包含一些简单的文字区域供孩子填写
- 整体布局美观、有创意`

const imageToImageTemplate = `请根据提供的图片修改这张手抄报。修改要求是：%s

画面风格：%s

要求：
- 保留原图的整体构图和布局，只按照修改要求进行调整
- 画面色彩鲜艳、活泼可爱，适合儿童
- 保持可爱的卡通元素和装饰边框
- 内容适合幼儿园年龄段的孩子`

const signatureTemplate = "- 请在图片右下角用艺术字体写上签名：「%s %s」"

// StyleDescription は画風に対応する説明文を返します。未知の画風は手描き風になります。
func StyleDescription(style domain.ImageStyle) string {
	if desc, ok := styleDescriptions[style]; ok {
		return desc
	}
	return styleDescriptions[domain.StyleHandwritten]
}

// ParseStyle は文字列を画風に変換します。未知の値は ok=false と既定の画風を返します。
func ParseStyle(s string) (domain.ImageStyle, bool) {
	for _, style := range domain.Styles() {
		if string(style) == strings.TrimSpace(s) {
			return style, true
		}
	}
	return domain.DefaultImageStyle, false
}

// Build はユーザー入力から最終的な指示文を組み立てます。
//
// custom の場合は入力をそのまま返し、それ以外は画風説明を埋め込んだテンプレートを使います。
// hasBaseImage が true の場合は参照画像を編集するテンプレートになります。
// 空白でない署名があれば、右下に署名を描く指示を1行追加します。
func Build(text string, style domain.ImageStyle, signature string, hasBaseImage bool) string {
	if style == domain.StyleCustom {
		return text
	}

	template := textToImageTemplate
	if hasBaseImage {
		template = imageToImageTemplate
	}
	out := fmt.Sprintf(template, text, StyleDescription(style))

	if sig := strings.TrimSpace(signature); sig != "" {
		out += "\n" + fmt.Sprintf(signatureTemplate, sig, signatureSuffix)
	}
	return out
}

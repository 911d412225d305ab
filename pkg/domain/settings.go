package domain

import (
	"fmt"
	"strings"
)

// ImageStyle は生成画像の画風です。
type ImageStyle string

const (
	StyleHandwritten ImageStyle = "handwritten"
	StyleWireframe   ImageStyle = "wireframe"
	StyleBlackboard  ImageStyle = "blackboard"
	StyleAnime       ImageStyle = "anime"
	StyleCustom      ImageStyle = "custom" // システム側の装飾を一切付けない
)

// DefaultImageStyle は未設定時の画風です。
const DefaultImageStyle = StyleHandwritten

// Styles は選択可能な画風を表示順に返します。
func Styles() []ImageStyle {
	return []ImageStyle{StyleHandwritten, StyleWireframe, StyleBlackboard, StyleAnime, StyleCustom}
}

// Settings はプロセス全体で共有されるスカラー設定のスナップショットです。
type Settings struct {
	APIKey         string
	PaperSizeIndex int
	Landscape      bool
	ImageStyle     ImageStyle
	Signature      string
}

// DefaultSettings は全項目が既定値の Settings を返します。
func DefaultSettings() Settings {
	return Settings{ImageStyle: DefaultImageStyle}
}

// PaperSize は用紙プリセットです。Ratio は縦向きの "W:H" です。
type PaperSize struct {
	Name  string
	Ratio string
}

var paperSizes = []PaperSize{
	{Name: "A4", Ratio: "2:3"},
	{Name: "A3", Ratio: "2:3"},
	{Name: "B5", Ratio: "2:3"},
	{Name: "8K", Ratio: "3:4"},
	{Name: "Square", Ratio: "1:1"},
	{Name: "Poster", Ratio: "9:16"},
}

// PaperSizes は用紙プリセットを固定順で返します。
func PaperSizes() []PaperSize {
	out := make([]PaperSize, len(paperSizes))
	copy(out, paperSizes)
	return out
}

// PaperSizeAt は index に対応するプリセットを返します。範囲外の場合は先頭を返します。
func PaperSizeAt(index int) PaperSize {
	if index < 0 || index >= len(paperSizes) {
		return paperSizes[0]
	}
	return paperSizes[index]
}

// AspectRatio は用紙プリセットと向きから生成リクエスト用のアスペクト比を求めます。
// 横向きの場合は W と H を入れ替えます。
func AspectRatio(paperIndex int, landscape bool) string {
	ratio := PaperSizeAt(paperIndex).Ratio
	if !landscape {
		return ratio
	}
	w, h, ok := strings.Cut(ratio, ":")
	if !ok {
		return ratio
	}
	return fmt.Sprintf("%s:%s", h, w)
}

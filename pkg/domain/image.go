package domain

import "time"

// DefaultAspectRatio は GenerateOptions でアスペクト比が省略された場合の値です。
const DefaultAspectRatio = "2:3"

// GenerateOptions は1回の生成リクエストに付随するオプションです。
// BaseImage と BaseImageMIMEType が両方揃っている場合のみ image-to-image として扱います。
type GenerateOptions struct {
	AspectRatio       string
	BaseImage         string // 生の base64 (data URL のヘッダーは含まない)
	BaseImageMIMEType string
	ReferenceURL      string // BaseImage が無い場合に取得して添付する参照画像URL
}

// ResolvedAspectRatio は空の場合にデフォルトを補ったアスペクト比を返します。
func (o *GenerateOptions) ResolvedAspectRatio() string {
	if o == nil || o.AspectRatio == "" {
		return DefaultAspectRatio
	}
	return o.AspectRatio
}

// HasBaseImage は inline の参照画像が添付されているかを返します。
func (o *GenerateOptions) HasBaseImage() bool {
	return o != nil && o.BaseImage != "" && o.BaseImageMIMEType != ""
}

// HistoryImage は履歴キャッシュに保存された生成画像の1件です。
// URL は data URL、外部URL、またはキャッシュが所有するファイルパスのいずれかです。
type HistoryImage struct {
	ID        string
	URL       string
	CreatedAt time.Time
}

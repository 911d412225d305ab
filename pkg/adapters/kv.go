package adapters

import "errors"

// ErrClosed はクローズ済みのストアを操作した場合に返されます。
var ErrClosed = errors.New("store is closed")

// KeyValueStore は設定や履歴インデックスを保存する同期的な KV 機能です。
// プラットフォームごとに実装が異なり、起動時に1つだけ選択されます。
type KeyValueStore interface {
	// Get はキーの値を返します。キーが存在しない場合は found=false でエラーは nil です。
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

// FileStore は画像バイトを永続化するファイル機能です。
// data URL をそのまま KV に保存できないプラットフォームでのみ使用します。
type FileStore interface {
	// Write は name でファイルを書き込み、後で Remove に渡せるパスを返します。
	Write(name string, data []byte) (string, error)
	// Remove はパスのファイルを削除します。既に存在しない場合もエラーにしません。
	Remove(path string) error
	// Owns はパスがこのストアの管理下にあるかを返します。
	Owns(path string) bool
}

// Package settings は API キーや用紙設定などのスカラー設定を永続化します。
//
// 読み込み失敗は常に既定値に、書き込み失敗はログ出力のみに変換され、
// 呼び出し側にエラーが伝播することはありません。
package settings

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/shouni/newspaper-image-kit/pkg/adapters"
	"github.com/shouni/newspaper-image-kit/pkg/domain"
	"github.com/spf13/cast"
)

// 保存キー。旧バージョンとの互換のために固定です。
const (
	KeyAPIKey         = "gemini_api_key"
	KeyPaperSizeIndex = "paper_size_index"
	KeyLandscape      = "orientation_landscape"
	KeyImageStyle     = "image_style"
	KeySignature      = "signature_text"
)

// Store は KV 機能の上に型付きの設定アクセスを提供する Config Store です。
type Store struct {
	kv adapters.KeyValueStore
}

// NewStore は kv を使う Store を作成します。kv が nil の場合、読み込みは常に既定値になり書き込みは破棄されます。
func NewStore(kv adapters.KeyValueStore) *Store {
	return &Store{kv: kv}
}

func (s *Store) get(key string) (string, bool) {
	if s == nil || s.kv == nil {
		return "", false
	}
	v, found, err := s.kv.Get(key)
	if err != nil {
		slog.Warn("設定の読み込みに失敗しました。既定値を使用します", "key", key, "error", err)
		return "", false
	}
	return v, found
}

func (s *Store) set(key, value string) {
	if s == nil || s.kv == nil {
		slog.Warn("ストレージが利用できないため設定を保存できません", "key", key)
		return
	}
	if err := s.kv.Set(key, value); err != nil {
		slog.Error("設定の保存に失敗しました", "key", key, "error", err)
	}
}

// GetString は key の文字列値を返します。未保存または読み込み失敗時は def です。
func (s *Store) GetString(key, def string) string {
	v, ok := s.get(key)
	if !ok {
		return def
	}
	return v
}

// GetInt は key の整数値を返します。変換できない場合は def です。
func (s *Store) GetInt(key string, def int) int {
	v, ok := s.get(key)
	if !ok {
		return def
	}
	n, err := cast.ToIntE(strings.TrimSpace(v))
	if err != nil {
		slog.Warn("設定値を整数に変換できません", "key", key, "value", v)
		return def
	}
	return n
}

// GetBool は key の真偽値を返します。変換できない場合は def です。
func (s *Store) GetBool(key string, def bool) bool {
	v, ok := s.get(key)
	if !ok {
		return def
	}
	b, err := cast.ToBoolE(strings.TrimSpace(v))
	if err != nil {
		slog.Warn("設定値を真偽値に変換できません", "key", key, "value", v)
		return def
	}
	return b
}

// SetString は key に文字列を保存します。
func (s *Store) SetString(key, value string) {
	s.set(key, value)
}

func (s *Store) APIKey() string {
	return s.GetString(KeyAPIKey, "")
}

func (s *Store) SetAPIKey(apiKey string) {
	s.set(KeyAPIKey, apiKey)
}

// HasAPIKey は API キーが設定済みかを返します。
func (s *Store) HasAPIKey() bool {
	return s.APIKey() != ""
}

// ClearAPIKey は保存済みの API キーを消去します。
func (s *Store) ClearAPIKey() {
	if s == nil || s.kv == nil {
		return
	}
	if err := s.kv.Delete(KeyAPIKey); err != nil {
		slog.Error("API キーの消去に失敗しました", "error", err)
	}
}

func (s *Store) PaperSizeIndex() int {
	return s.GetInt(KeyPaperSizeIndex, 0)
}

func (s *Store) SetPaperSizeIndex(index int) {
	s.set(KeyPaperSizeIndex, strconv.Itoa(index))
}

func (s *Store) Landscape() bool {
	return s.GetBool(KeyLandscape, false)
}

func (s *Store) SetLandscape(landscape bool) {
	s.set(KeyLandscape, strconv.FormatBool(landscape))
}

// ImageStyle は保存済みの画風を返します。未知の値は既定の画風になります。
func (s *Store) ImageStyle() domain.ImageStyle {
	v, ok := s.get(KeyImageStyle)
	if !ok {
		return domain.DefaultImageStyle
	}
	for _, style := range domain.Styles() {
		if string(style) == v {
			return style
		}
	}
	return domain.DefaultImageStyle
}

func (s *Store) SetImageStyle(style domain.ImageStyle) {
	s.set(KeyImageStyle, string(style))
}

func (s *Store) Signature() string {
	return s.GetString(KeySignature, "")
}

func (s *Store) SetSignature(signature string) {
	s.set(KeySignature, signature)
}

// AspectRatio は保存済みの用紙と向きから生成用のアスペクト比を求めます。
func (s *Store) AspectRatio() string {
	return domain.AspectRatio(s.PaperSizeIndex(), s.Landscape())
}

// Snapshot は全設定を1回で読み出します。
func (s *Store) Snapshot() domain.Settings {
	return domain.Settings{
		APIKey:         s.APIKey(),
		PaperSizeIndex: s.PaperSizeIndex(),
		Landscape:      s.Landscape(),
		ImageStyle:     s.ImageStyle(),
		Signature:      s.Signature(),
	}
}

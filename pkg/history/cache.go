// Package history は直近に生成した画像を最大3件まで保持する履歴キャッシュです。
package history

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/shouni/newspaper-image-kit/pkg/adapters"
	"github.com/shouni/newspaper-image-kit/pkg/domain"
	"github.com/shouni/newspaper-image-kit/pkg/imgutil"
)

const (
	// StorageKey は履歴一覧を保存する KV のキーです。
	StorageKey = "image_history"
	// MaxEntries は保持する履歴の最大件数です。
	MaxEntries = 3

	fileNamePrefix = "history_"
)

// record は KV に保存する1件分の形式です。createdAt は Unix ミリ秒です。
type record struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"createdAt"`
}

// Cache は履歴キャッシュです。
//
// 一覧は新しい順に並び、MaxEntries を超えた古いエントリは追加時に削除されます。
// FileStore が設定されている場合、data URL はファイルに書き出してからパスを保存し、
// エントリの削除と同時にそのファイルも削除します。
type Cache struct {
	mu    sync.Mutex
	kv    adapters.KeyValueStore
	files adapters.FileStore

	now   func() time.Time
	newID func() string
}

// NewCache は Cache を作成します。files は nil を許容します（data URL をそのまま保存）。
func NewCache(kv adapters.KeyValueStore, files adapters.FileStore) *Cache {
	return &Cache{
		kv:    kv,
		files: files,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// List は保存済みの履歴を新しい順に返します。読み込めない場合は空です。
func (c *Cache) List() []domain.HistoryImage {
	c.mu.Lock()
	defer c.mu.Unlock()

	return toImages(c.load())
}

// Get は id の履歴を返します。
func (c *Cache) Get(id string) (domain.HistoryImage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.load() {
		if r.ID == id {
			return r.toImage(), true
		}
	}
	return domain.HistoryImage{}, false
}

// Add は画像参照を履歴の先頭に追加し、作成したエントリを返します。
// エラーになるのは imageRef が空の場合だけで、保存の失敗はログに記録されます。
func (c *Cache) Add(imageRef string) (domain.HistoryImage, error) {
	if imageRef == "" {
		return domain.HistoryImage{}, fmt.Errorf("画像参照が空です")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.newID()
	entry := record{
		ID:        id,
		URL:       c.materialize(id, imageRef),
		CreatedAt: c.now().UnixMilli(),
	}

	records := append([]record{entry}, c.load()...)
	if len(records) > MaxEntries {
		for _, evicted := range records[MaxEntries:] {
			c.removeFile(evicted.URL)
		}
		records = records[:MaxEntries]
	}

	c.save(records)
	return entry.toImage(), nil
}

// Remove は id の履歴を削除します。存在しない id は何もしません。
// ファイルの削除に失敗してもエントリは削除されます。
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := c.load()
	kept := records[:0]
	removed := false
	for _, r := range records {
		if r.ID == id {
			c.removeFile(r.URL)
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if removed {
		c.save(kept)
	}
}

// Clear はすべての履歴と、キャッシュが所有するファイルを削除します。
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.load() {
		c.removeFile(r.URL)
	}
	if c.kv == nil {
		return
	}
	if err := c.kv.Delete(StorageKey); err != nil {
		slog.Error("履歴の消去に失敗しました", "error", err)
	}
}

// materialize は FileStore がある場合に data URL をファイルへ書き出し、保存する参照を返します。
func (c *Cache) materialize(id, imageRef string) string {
	if c.files == nil || !imgutil.IsDataURL(imageRef) {
		return imageRef
	}

	mimeType, data, err := imgutil.ParseDataURL(imageRef)
	if err != nil {
		slog.Warn("data URL を解析できないためそのまま保存します", "id", id, "error", err)
		return imageRef
	}

	path, err := c.files.Write(fileNamePrefix+id+imgutil.ExtensionFor(mimeType), data)
	if err != nil {
		slog.Warn("画像ファイルの保存に失敗したため data URL のまま保存します", "id", id, "error", err)
		return imageRef
	}
	return path
}

func (c *Cache) removeFile(ref string) {
	if c.files == nil || !c.files.Owns(ref) {
		return
	}
	if err := c.files.Remove(ref); err != nil {
		slog.Warn("履歴画像ファイルの削除に失敗しました", "path", ref, "error", err)
	}
}

func (c *Cache) load() []record {
	if c.kv == nil {
		return nil
	}
	raw, found, err := c.kv.Get(StorageKey)
	if err != nil {
		slog.Warn("履歴の読み込みに失敗しました", "error", err)
		return nil
	}
	if !found || raw == "" {
		return nil
	}

	var records []record
	if err := sonic.UnmarshalString(raw, &records); err != nil {
		slog.Warn("履歴データが壊れているため空として扱います", "error", err)
		return nil
	}
	return records
}

func (c *Cache) save(records []record) {
	if c.kv == nil {
		slog.Warn("ストレージが利用できないため履歴を保存できません")
		return
	}
	raw, err := sonic.MarshalString(records)
	if err != nil {
		slog.Error("履歴のエンコードに失敗しました", "error", err)
		return
	}
	if err := c.kv.Set(StorageKey, raw); err != nil {
		slog.Error("履歴の保存に失敗しました", "error", err)
	}
}

func (r record) toImage() domain.HistoryImage {
	return domain.HistoryImage{
		ID:        r.ID,
		URL:       r.URL,
		CreatedAt: time.UnixMilli(r.CreatedAt),
	}
}

func toImages(records []record) []domain.HistoryImage {
	images := make([]domain.HistoryImage, 0, len(records))
	for _, r := range records {
		images = append(images, r.toImage())
	}
	return images
}

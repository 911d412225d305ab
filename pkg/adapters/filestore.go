package adapters

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskFileStore は1つのディレクトリ配下に画像ファイルを保存する FileStore です。
//
// 保存構造:
//
//	{dir}/{name}
type DiskFileStore struct {
	dir string
}

// NewDiskFileStore は dir を root とする DiskFileStore を作成します。
// ディレクトリは最初の Write で作成されます。
func NewDiskFileStore(dir string) *DiskFileStore {
	return &DiskFileStore{dir: filepath.Clean(dir)}
}

// Dir は保存先ディレクトリを返します。
func (s *DiskFileStore) Dir() string {
	return s.dir
}

// Write は一時ファイルに書き込んでからリネームすることで原子的に保存します。
func (s *DiskFileStore) Write(name string, data []byte) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("不正なファイル名です: %q", name)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("空のデータは保存できません")
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return "", fmt.Errorf("保存ディレクトリの作成に失敗しました: %w", err)
	}

	path := filepath.Join(s.dir, name)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return "", fmt.Errorf("ファイルの書き込みに失敗しました: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return "", fmt.Errorf("ファイルの確定に失敗しました: %w", err)
	}
	return path, nil
}

// Remove はファイルを削除します。存在しないファイルは削除済みとして扱います。
func (s *DiskFileStore) Remove(path string) error {
	if !s.Owns(path) {
		return fmt.Errorf("管理外のパスは削除できません: %s", path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Owns はパスがこのストアのディレクトリ直下を指しているかを返します。
func (s *DiskFileStore) Owns(path string) bool {
	if path == "" || strings.Contains(path, "://") {
		return false
	}
	clean := filepath.Clean(path)
	return filepath.Dir(clean) == s.dir && filepath.Base(clean) != "."
}

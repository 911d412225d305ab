package history

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var errBroken = errors.New("storage broken")

// flakyFileStore は書き込みか削除を失敗させられる FileStore なのだ。
type flakyFileStore struct {
	failWrite  bool
	failRemove bool
	written    map[string][]byte
	removed    []string
}

func newFlakyFileStore() *flakyFileStore {
	return &flakyFileStore{written: make(map[string][]byte)}
}

func (f *flakyFileStore) Write(name string, data []byte) (string, error) {
	if f.failWrite {
		return "", errBroken
	}
	path := "/flaky/" + name
	f.written[path] = data
	return path, nil
}

func (f *flakyFileStore) Remove(path string) error {
	f.removed = append(f.removed, path)
	if f.failRemove {
		return errBroken
	}
	delete(f.written, path)
	return nil
}

func (f *flakyFileStore) Owns(path string) bool {
	return strings.HasPrefix(path, "/flaky/")
}

// sequentialIDs は id-1, id-2, ... を順に返すのだ。
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// steppingClock は呼ばれるたびに1秒進む時計なのだ。
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

// brokenKV はすべての操作が失敗する KeyValueStore なのだ。
type brokenKV struct{}

func (brokenKV) Get(key string) (string, bool, error) { return "", false, errBroken }
func (brokenKV) Set(key, value string) error          { return errBroken }
func (brokenKV) Delete(key string) error              { return errBroken }

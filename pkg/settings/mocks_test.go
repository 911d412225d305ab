package settings

import "errors"

var errBroken = errors.New("storage broken")

// brokenKV はすべての操作が失敗する KeyValueStore なのだ。
type brokenKV struct {
	setCalls int
}

func (b *brokenKV) Get(key string) (string, bool, error) {
	return "", false, errBroken
}

func (b *brokenKV) Set(key, value string) error {
	b.setCalls++
	return errBroken
}

func (b *brokenKV) Delete(key string) error {
	return errBroken
}

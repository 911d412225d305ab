package domain

import "fmt"

// ErrorKind は生成パスのエラー分類です。
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindTransport     ErrorKind = "transport"
	KindProtocol      ErrorKind = "protocol"
	KindExtraction    ErrorKind = "extraction"
)

// GenerationError は生成処理の失敗を表します。
// Message はそのまま UI に表示できる文言で、Err は診断用の元エラーです。
type GenerationError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

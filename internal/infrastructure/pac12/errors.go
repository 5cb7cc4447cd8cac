package pac12

import (
	"errors"
	"fmt"
)

// 境界で errors.Is による判定に使う番兵エラーです
var (
	ErrRequestFailed         = errors.New("pac12: request failed")
	ErrUnexpectedContentType = errors.New("pac12: unexpected content type")
	ErrParseFailed           = errors.New("pac12: parse failed")
)

// FetchError はAPI呼び出しの失敗を表します
// Unwrap は番兵エラーと原因のエラーを返すので、呼び出し側は errors.Is で分類できます
type FetchError struct {
	Kind        error // ErrRequestFailed / ErrUnexpectedContentType / ErrParseFailed
	Op          string
	URL         string
	Status      int
	ContentType string
	Err         error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.ContentType != "" {
		msg = fmt.Sprintf("%s (content-type %q)", msg, e.ContentType)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

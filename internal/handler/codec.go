package handler

import "encoding/json"

// jsonCodec はConnectのメッセージを素のGo構造体としてJSONで送受信します
// 既定のJSONコーデックはprotobufメッセージしか扱えないため、同じ名前で置き換えます
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}

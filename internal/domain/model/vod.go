package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// VodProgram はVOD一覧APIが返す番組1件のドメインモデルです
// APIレスポンスのページ単位で生成され、描画後は破棄されます（永続化しません）
type VodProgram struct {
	ID         ProgramID `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	DurationMs float64   `json:"duration"` // 再生時間（単位：ミリ秒）
	Images     Images    `json:"images"`

	// APIが埋め込んで返す参照（IDのみ）。キーが無い場合は nil のままです
	SchoolRefs []Ref `json:"schools,omitempty"`
	SportRefs  []Ref `json:"sports,omitempty"`

	// 以下はエンリッチ後に設定されます
	// 解決できなかった参照（LookupMiss）は nil のスロットとして残り、長さは参照数と一致します
	Schools     []*School `json:"-"`
	SportNames  []*string `json:"-"`
	SchoolsList NameList  `json:"-"`
	SportsList  string    `json:"-"`
	Enriched    bool      `json:"-"`
}

// Images は番組のサムネイル画像URLです
type Images struct {
	Small string `json:"small"`
	// small 以外のサイズはそのまま保持します
	Extra map[string]string `json:"-"`
}

// UnmarshalJSON は small を取り出し、残りのサイズを Extra に格納します
func (i *Images) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if k == "small" {
			i.Small = s
			continue
		}
		if i.Extra == nil {
			i.Extra = make(map[string]string)
		}
		i.Extra[k] = s
	}
	return nil
}

// Ref はVODに埋め込まれた学校・競技への参照です
type Ref struct {
	ID int `json:"id"`
}

// School は学校の詳細レコードです
type School struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Sport は競技の詳細レコードです
type Sport struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ProgramID はVODのIDです。APIが文字列・数値のどちらで返しても受け付けます
type ProgramID string

// UnmarshalJSON は文字列または数値のIDをデコードします
func (id *ProgramID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProgramID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("program id: %w", err)
	}
	*id = ProgramID(n.String())
	return nil
}

// NameList は学校名の一覧です
// 2件以上のときだけ ", " で結合された文字列として扱い、それ以外は配列のまま残します
// （sportsList が常に文字列になるのとは非対称ですが、既存の挙動として維持しています）
type NameList struct {
	Names  []*string
	Joined bool
}

// JoinedNames は常に結合済みとして扱う NameList を返します
func JoinedNames(names []*string) NameList {
	return NameList{Names: names, Joined: true}
}

// String は表示用の文字列です。解決できなかった名前は除外して ", " で結合します
func (l NameList) String() string {
	return joinNames(l.Names)
}

// MarshalJSON は結合済みなら文字列、そうでなければ null を含む配列として出力します
func (l NameList) MarshalJSON() ([]byte, error) {
	if l.Joined {
		return json.Marshal(l.String())
	}
	names := l.Names
	if names == nil {
		names = []*string{}
	}
	return json.Marshal(names)
}

// UnmarshalJSON は MarshalJSON の出力を読み戻します
// 文字列は結合済みの1要素として保持します
func (l *NameList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = NameList{Names: []*string{&s}, Joined: true}
		return nil
	}
	var names []*string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	*l = NameList{Names: names}
	return nil
}

func joinNames(names []*string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n == nil {
			continue
		}
		parts = append(parts, *n)
	}
	return strings.Join(parts, ", ")
}

// JoinSportNames は競技名を件数に関わらず ", " で結合します
func JoinSportNames(names []*string) string {
	return joinNames(names)
}

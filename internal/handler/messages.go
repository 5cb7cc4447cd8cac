package handler

import "jo3qma.com/pac12_vod/internal/domain/model"

// ListVodsRequest は一覧取得のリクエストです
type ListVodsRequest struct {
	Mount    string `json:"mount"`
	NextPage string `json:"next_page,omitempty"`
}

// ListVodsResponse は一覧取得のレスポンスです
type ListVodsResponse struct {
	Programs []*Program `json:"programs"`
	NextPage string     `json:"next_page,omitempty"`
}

// ReportScrollRequest はホストページのスクロール位置です
type ReportScrollRequest struct {
	DocumentHeight float64 `json:"document_height"`
	WindowHeight   float64 `json:"window_height"`
	ScrollTop      float64 `json:"scroll_top"`
}

// ReportScrollResponse は無限スクロールの結果です
type ReportScrollResponse struct {
	Triggered bool       `json:"triggered"`
	Programs  []*Program `json:"programs"`
}

// Program はエンリッチ済みの番組です
type Program struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	DurationMs  float64        `json:"duration"`
	Duration    string         `json:"duration_display"`
	Thumbnail   string         `json:"thumbnail"`
	SchoolsList model.NameList `json:"schools_list"`
	SportsList  string         `json:"sports_list"`
}

package pac12

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"jo3qma.com/pac12_vod/internal/domain/model"
	"jo3qma.com/pac12_vod/internal/domain/repository"
)

// DefaultBaseURL はPac-12 APIのベースURLです
const DefaultBaseURL = "https://api.pac-12.com/v3"

const (
	opVod     = "vod"
	opVodPage = "vod_page"
	opSports  = "sports"
	opSchools = "schools"
)

// Client はPac-12 APIのJSONクライアントです
// 外部APIのレスポンス構造をドメインモデルに変換する責務を持ちます
// リトライは行いません
type Client struct {
	client  *http.Client
	baseURL string
}

var (
	_ repository.VodRepository    = (*Client)(nil)
	_ repository.SportRepository  = (*Client)(nil)
	_ repository.SchoolRepository = (*Client)(nil)
)

// NewClient は新しいClientを作成します
// 送信リクエストはotelhttpで計測されます
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return newClient(&http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, baseURL)
}

// NewClientWithHTTP は http.Client を指定してClientを作成します
func NewClientWithHTTP(client *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return newClient(client, baseURL)
}

// newClient はテスト容易性のための内部コンストラクタです。
// テストでは httptest サーバーの http.Client/baseURL を注入します。
func newClient(client *http.Client, baseURL string) *Client {
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// VodsURL は新規クエリのURLを組み立てます
// 例: https://api.pac-12.com/v3/vod?page=&pagesize=10&sort=DESC&sports=
func (c *Client) VodsURL(q model.VodQuery) string {
	params := url.Values{}
	params.Set("page", q.Page)
	params.Set("pagesize", strconv.Itoa(q.PageSize))
	params.Set("sort", q.Sort)
	params.Set("sports", q.Sports)
	return c.baseURL + "/vod?" + params.Encode()
}

// SchoolsURL は学校取得のURLを組み立てます
// IDは ";" で結合し、1つのパスセグメントとしてエスケープします
func (c *Client) SchoolsURL(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return c.baseURL + "/schools/" + url.PathEscape(strings.Join(parts, ";"))
}

// FetchVods は新規クエリでVOD一覧を取得します
func (c *Client) FetchVods(ctx context.Context, q model.VodQuery) (*model.VodListing, error) {
	return c.fetchListing(ctx, opVod, c.VodsURL(q))
}

// FetchVodsPage は次ページURLをそのまま使ってVOD一覧を取得します
// ベースURLとスキーム・ホストが異なるURLは取得せずに失敗させます
func (c *Client) FetchVodsPage(ctx context.Context, nextPageURL string) (*model.VodListing, error) {
	if !c.sameOrigin(nextPageURL) {
		return nil, &FetchError{
			Kind: ErrRequestFailed,
			Op:   opVodPage,
			URL:  nextPageURL,
			Err:  errForeignURL,
		}
	}
	return c.fetchListing(ctx, opVodPage, nextPageURL)
}

var errForeignURL = errors.New("next page URL is not on the API host")

func (c *Client) sameOrigin(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host)
}

func (c *Client) fetchListing(ctx context.Context, op, u string) (*model.VodListing, error) {
	var listing model.VodListing
	if err := fetchJSON(ctx, c.client, op, u, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// FetchSports は競技カタログを取得します
func (c *Client) FetchSports(ctx context.Context) ([]model.Sport, error) {
	var resp struct {
		Sports []model.Sport `json:"sports"`
	}
	if err := fetchJSON(ctx, c.client, opSports, c.baseURL+"/sports", &resp); err != nil {
		return nil, err
	}
	return resp.Sports, nil
}

// FetchSchools は ids の学校をまとめて取得します
func (c *Client) FetchSchools(ctx context.Context, ids []int) ([]model.School, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var resp struct {
		Schools []model.School `json:"schools"`
	}
	if err := fetchJSON(ctx, c.client, opSchools, c.SchoolsURL(ids), &resp); err != nil {
		return nil, err
	}
	return resp.Schools, nil
}

package handler

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// VodServiceClient は VodService のクライアントです
type VodServiceClient struct {
	listVods     *connect.Client[ListVodsRequest, ListVodsResponse]
	reportScroll *connect.Client[ReportScrollRequest, ReportScrollResponse]
}

// NewVodServiceClient は baseURL のサーバーに接続するクライアントを作成します
func NewVodServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *VodServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &VodServiceClient{
		listVods:     connect.NewClient[ListVodsRequest, ListVodsResponse](httpClient, baseURL+ListVodsProcedure, opts...),
		reportScroll: connect.NewClient[ReportScrollRequest, ReportScrollResponse](httpClient, baseURL+ReportScrollProcedure, opts...),
	}
}

func (c *VodServiceClient) ListVods(ctx context.Context, req *connect.Request[ListVodsRequest]) (*connect.Response[ListVodsResponse], error) {
	return c.listVods.CallUnary(ctx, req)
}

func (c *VodServiceClient) ReportScroll(ctx context.Context, req *connect.Request[ReportScrollRequest]) (*connect.Response[ReportScrollResponse], error) {
	return c.reportScroll.CallUnary(ctx, req)
}

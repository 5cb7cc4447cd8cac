package pac12

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"
)

const (
	userAgent = "pac12-vod/1.0"
	// レスポンスボディの上限
	maxBodyBytes = 4 << 20
)

// fetchJSON は url にGETリクエストを送り、JSONを out にデコードします
// Content-Type が application/json でなければ、ボディが正しいJSONでも信用せずに失敗させます
func fetchJSON(ctx context.Context, client *http.Client, op, url string, out any) error {
	start := time.Now()
	err := doFetchJSON(ctx, client, op, url, out)
	observeRequest(op, err, time.Since(start))
	return err
}

func doFetchJSON(ctx context.Context, client *http.Client, op, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &FetchError{Kind: ErrRequestFailed, Op: op, URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return &FetchError{Kind: ErrRequestFailed, Op: op, URL: url, Err: err}
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &FetchError{Kind: ErrRequestFailed, Op: op, URL: url, Status: res.StatusCode}
	}

	ct := res.Header.Get("Content-Type")
	if !isJSONContentType(ct) {
		return &FetchError{Kind: ErrUnexpectedContentType, Op: op, URL: url, Status: res.StatusCode, ContentType: ct}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return &FetchError{Kind: ErrRequestFailed, Op: op, URL: url, Status: res.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &FetchError{Kind: ErrParseFailed, Op: op, URL: url, Status: res.StatusCode, Err: err}
	}
	return nil
}

// isJSONContentType は application/json かどうかを判定します
// "application/json; charset=utf-8" のようなパラメータ付きも受け付けます
func isJSONContentType(ct string) bool {
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mt == "application/json"
}

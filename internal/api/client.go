package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/schooldesk/admin-bot/internal/metrics"
	"go.uber.org/zap"
)

// Client — единственная точка выхода в школьный REST API.
// Один вызов — один запрос: без ретраев и без батчей; локальное состояние
// по результату обновляет вызывающая сторона.
type Client struct {
	base string
	hc   *http.Client
	log  *zap.SugaredLogger
}

func New(baseURL string, log *zap.SugaredLogger) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: 15 * time.Second},
		log:  log,
	}
}

// do выполняет один запрос. token == "" — без заголовка Authorization
// (единственный такой вызов — логин). out == nil — тело ответа не нужно.
func (c *Client) do(ctx context.Context, op, method, path, token string, query url.Values, body, out any) error {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		metrics.ObserveAPIRequest(op, "network_error", time.Since(start))
		c.log.Warnw("запрос к API не выполнен", "op", op, "err", err)
		return &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		metrics.ObserveAPIRequest(op, "request_error", time.Since(start))
		re := &RequestError{Status: resp.StatusCode, Message: serverMessage(raw)}
		c.log.Warnw("API ответил ошибкой", "op", op, "status", resp.StatusCode, "msg", re.Message)
		return re
	}
	metrics.ObserveAPIRequest(op, "ok", time.Since(start))

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.log.Warnw("не удалось разобрать ответ API", "op", op, "err", err)
		return &RequestError{Status: resp.StatusCode, Message: "bad response body"}
	}
	return nil
}

func serverMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(raw))
}

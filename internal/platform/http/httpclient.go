// Package http は外部API呼び出し用のHTTPクライアントを提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// ClientOptions はNewHTTPClientの接続パラメータです。ゼロ値の項目は既定値を使います。
type ClientOptions struct {
	Timeout             time.Duration // リクエスト全体（既定30秒）
	DialTimeout         time.Duration // TCP接続（既定5秒）
	TLSHandshakeTimeout time.Duration // 既定5秒
	MaxIdleConns        int           // 既定100
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = 5 * time.Second
	}
	if o.TLSHandshakeTimeout <= 0 {
		o.TLSHandshakeTimeout = 5 * time.Second
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = 100
	}
	return o
}

// NewHTTPClient は外部API（Gemini）呼び出し用に設定されたHTTPクライアントを作成します。
//
// 注意:
//   - http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使用すること
//   - プロキシは環境変数（HTTP_PROXYなど）に従う
func NewHTTPClient(opts ClientOptions) *http.Client {
	o := opts.withDefaults()
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   o.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        o.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: o.TLSHandshakeTimeout,
	}
	return &http.Client{Timeout: o.Timeout, Transport: t}
}

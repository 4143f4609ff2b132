// Package api はHTTP APIの共通レスポンス型とパラメータバインディングを提供します。
package api

// ErrorResponse は全エンドポイント共通のエラーレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は本文を持たない成功レスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse は/loginの成功レスポンスです。
type TokenResponse struct {
	Token string `json:"token"`
}

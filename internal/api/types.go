// Package api implements the HTTP client for the remote answering service.
package api

import "github.com/acahill/ragchat/internal/chat"

// Identity is the result of a successful credential exchange.
type Identity struct {
	Token  string
	UserID string
	Email  string
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type idTokenRequest struct {
	IDToken string `json:"id_token"`
}

type tokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type historyResponse struct {
	Messages []chat.Message `json:"messages"`
}

type sendRequest struct {
	Message string `json:"message"`
	UseRAG  bool   `json:"use_rag"`
}

type sendResponse struct {
	Response    string         `json:"response"`
	ChatHistory []chat.Message `json:"chat_history"`
}

// errorResponse is the server's error body shape
type errorResponse struct {
	Detail string `json:"detail"`
}

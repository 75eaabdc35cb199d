package dto

import "encoding/json"

type ChatRequest struct {
	Message string          `json:"message"`
	Context json.RawMessage `json:"context"`
	History []ChatTurn      `json:"history"`
}

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Reply    string `json:"reply"`
	Navigate string `json:"navigate,omitempty"`
}

type ChatErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type AnalyticsResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

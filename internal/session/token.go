package session

import (
	"encoding/json"
	"strings"
)

// ExtractToken returns the bearer credential held in a stored value. Login
// flows may persist either the raw token or the whole login response
// ({"data":{"token":...}} or {"token":...}).
func ExtractToken(stored string) string {
	stored = strings.TrimSpace(stored)
	if !strings.HasPrefix(stored, "{") {
		return stored
	}

	var payload struct {
		Token string `json:"token"`
		Data  struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(stored), &payload); err != nil {
		return ""
	}
	if payload.Data.Token != "" {
		return payload.Data.Token
	}
	return payload.Token
}

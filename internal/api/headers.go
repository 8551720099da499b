package api

import (
	"net/http"
	"strings"
)

const (
	HeaderRequestID      = "X-Request-ID"
	HeaderInitData       = "X-Telegram-Init-Data"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// Values some hosts report instead of leaving the token empty.
var emptyTokens = map[string]struct{}{
	"":          {},
	"null":      {},
	"undefined": {},
	"{}":        {},
}

// buildHeaders derives the outgoing headers for req. It never fails: a
// missing host token just produces an unauthenticated request.
func (c *Client) buildHeaders(req Request, requestID string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")

	for k, v := range req.Headers {
		h.Set(k, v)
	}

	if !req.SkipAuth {
		if token, ok := c.sessionToken(requestID); ok {
			h.Set(HeaderInitData, token)
		}
	} else {
		h.Del(HeaderInitData)
	}

	if req.IdempotencyKey != "" {
		h.Set(HeaderIdempotencyKey, req.IdempotencyKey)
	}

	h.Set(HeaderRequestID, requestID)
	return h
}

func (c *Client) sessionToken(requestID string) (string, bool) {
	token, err := c.host.InitData()
	if err != nil {
		c.requestLogger(requestID).Debugf("No host session token: %v", err)
		return "", false
	}
	token = strings.TrimSpace(token)
	if _, empty := emptyTokens[token]; empty {
		return "", false
	}
	return token, true
}

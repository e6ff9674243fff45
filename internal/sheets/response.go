package sheets

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/beautysoda/quoteapi/pkg/errors"
)

const (
	StatusOK      = "ok"
	StatusSuccess = "success"
)

// Response is the JSON the endpoint answers with
type Response struct {
	Status  string          `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Accepted reports whether the status discriminator signals success
func (r *Response) Accepted() bool {
	switch strings.ToLower(strings.TrimSpace(r.Status)) {
	case StatusOK, StatusSuccess:
		return true
	default:
		return false
	}
}

func parseResponse(statusCode int, body []byte) (*Response, error) {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return nil, &errors.ErrConfiguration{StatusCode: statusCode, Reason: "access denied, check the deployment's access setting"}
	case statusCode == http.StatusNotFound:
		return nil, &errors.ErrConfiguration{StatusCode: statusCode, Reason: "endpoint not found, check the deployment URL"}
	case statusCode < 200 || statusCode > 299:
		return nil, &errors.ErrServer{StatusCode: statusCode, Message: snippet(body)}
	}

	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		// A sign-in page instead of JSON means the deployment isn't public
		return nil, &errors.ErrConfiguration{StatusCode: statusCode, Reason: "response is not JSON: " + snippet(body)}
	}

	if !resp.Accepted() {
		msg := resp.Message
		if msg == "" {
			msg = "unexpected status " + quoteStatus(resp.Status)
		}
		return nil, &errors.ErrServer{StatusCode: statusCode, Message: msg}
	}
	return &resp, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

func quoteStatus(s string) string {
	if s == "" {
		return "(empty)"
	}
	return `"` + s + `"`
}

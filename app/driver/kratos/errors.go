package kratos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"planora/app/domain"

	kratosclient "github.com/ory/kratos-client-go"
)

// Kratos UI message ids the adapter reacts to
const (
	msgIDPasswordPolicy     = 4000005
	msgIDInvalidCredentials = 4000006
	msgIDDuplicateAccount   = 4000007
	msgIDAddressNotVerified = 4000010
	msgIDLoginFlowExpired   = 4010001
)

const (
	messageInvalidCredentials = "Invalid email or password"
	messageUserExists         = "User with this email already exists"
	messageUnavailable        = "Authentication service is temporarily unavailable"
	messageTimeout            = "Identity provider did not respond in time"
)

// errorBody covers both the generic error envelope and a flow carrying UI
// messages.
type errorBody struct {
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error"`
	UI *struct {
		Messages []uiMessage `json:"messages"`
		Nodes    []struct {
			Messages []uiMessage `json:"messages"`
		} `json:"nodes"`
	} `json:"ui"`
}

type uiMessage struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
}

func (b *errorBody) uiMessages() []uiMessage {
	if b.UI == nil {
		return nil
	}
	out := append([]uiMessage(nil), b.UI.Messages...)
	for _, n := range b.UI.Nodes {
		out = append(out, n.Messages...)
	}
	return out
}

// transformError turns a Kratos client failure into a *domain.AuthError.
// Transport timeouts keep the original error as cause so callers can detect
// a deadline.
func (a *IdentityAdapter) transformError(err error, httpResp *http.Response, operation string) *domain.AuthError {
	a.logger.Error("kratos request failed",
		"operation", operation,
		"error", err,
		"error_type", fmt.Sprintf("%T", err),
		"http_status", getHTTPStatus(httpResp))

	if isTransportTimeout(err) {
		return domain.NewAuthError(domain.ErrCodeTimeout, messageTimeout, err)
	}

	var apiErr *kratosclient.GenericOpenAPIError
	if errors.As(err, &apiErr) {
		var body errorBody
		if jsonErr := json.Unmarshal(apiErr.Body(), &body); jsonErr == nil {
			if authErr := classifyBody(&body, err); authErr != nil {
				return authErr
			}
		}
	}

	if httpResp != nil {
		return statusError(httpResp.StatusCode, operation, err)
	}

	return domain.NewAuthError(domain.ErrCodeServiceUnavailable, messageUnavailable, err)
}

func isTransportTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func classifyBody(body *errorBody, cause error) *domain.AuthError {
	for _, m := range body.uiMessages() {
		if m.Type != "" && m.Type != "error" {
			continue
		}
		switch m.ID {
		case msgIDInvalidCredentials:
			return domain.NewAuthError(domain.ErrCodeInvalidCredentials, messageInvalidCredentials, cause)
		case msgIDDuplicateAccount:
			return domain.NewAuthError(domain.ErrCodeUserExists, messageUserExists, cause)
		case msgIDAddressNotVerified:
			return domain.NewAuthError(domain.ErrCodeForbidden, domain.ErrEmailNotConfirmed.Error(), cause)
		case msgIDLoginFlowExpired:
			return domain.NewAuthError(domain.ErrCodeFlowExpired, "Authentication flow has expired. Please start over.", cause)
		case msgIDPasswordPolicy:
			return domain.NewAuthError(domain.ErrCodeValidation, m.Text, cause)
		}
		if m.Text != "" {
			return classifyMessage(m.Text, cause)
		}
	}

	if body.Error == nil {
		return nil
	}

	if body.Error.Code == http.StatusConflict {
		return domain.NewAuthError(domain.ErrCodeUserExists, messageUserExists, cause)
	}
	if body.Error.Reason != "" {
		if authErr := classifyMessage(body.Error.Reason, cause); authErr.Code != domain.ErrCodeUnknown {
			return authErr
		}
	}
	// The status code says more than a generic envelope message
	return nil
}

// classifyMessage is the fallback for messages without a known id
func classifyMessage(message string, cause error) *domain.AuthError {
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, []string{"already exists", "exists already", "already registered", "conflicts with another identity"}):
		return domain.NewAuthError(domain.ErrCodeUserExists, messageUserExists, cause)
	case containsAny(lower, []string{"credentials are invalid", "invalid credentials", "wrong password"}):
		return domain.NewAuthError(domain.ErrCodeInvalidCredentials, messageInvalidCredentials, cause)
	case containsAny(lower, []string{"session not found", "no active session", "session expired"}):
		return domain.NewAuthError(domain.ErrCodeSessionExpired, "Session has expired", cause)
	case containsAny(lower, []string{"flow expired", "flow has expired"}):
		return domain.NewAuthError(domain.ErrCodeFlowExpired, "Authentication flow has expired. Please start over.", cause)
	case containsAny(lower, []string{"password", "traits", "missing properties", "is not valid"}):
		return domain.NewAuthError(domain.ErrCodeValidation, message, cause)
	}

	return domain.NewAuthError(domain.ErrCodeUnknown, message, cause)
}

// statusError maps a bare HTTP status when the body carried nothing useful
func statusError(statusCode int, operation string, cause error) *domain.AuthError {
	switch statusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.NewAuthError(domain.ErrCodeValidation, "Request validation failed", cause)
	case http.StatusUnauthorized:
		return domain.NewAuthError(domain.ErrCodeUnauthorized, "Authentication failed", cause)
	case http.StatusForbidden:
		return domain.NewAuthError(domain.ErrCodeForbidden, "Access denied", cause)
	case http.StatusNotFound:
		return domain.NewAuthError(domain.ErrCodeNotFound, "Resource not found", cause)
	case http.StatusConflict:
		return domain.NewAuthError(domain.ErrCodeUserExists, messageUserExists, cause)
	case http.StatusGone:
		return domain.NewAuthError(domain.ErrCodeFlowExpired, "Authentication flow has expired. Please start over.", cause)
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return domain.NewAuthError(domain.ErrCodeServiceUnavailable, messageUnavailable, cause)
	case http.StatusGatewayTimeout:
		return domain.NewAuthError(domain.ErrCodeTimeout, messageTimeout, cause)
	default:
		return domain.NewAuthError(domain.ErrCodeInternal, fmt.Sprintf("HTTP %d: %s failed", statusCode, operation), cause)
	}
}

// containsAny checks if the text contains any of the given substrings
func containsAny(text string, substrings []string) bool {
	for _, substring := range substrings {
		if strings.Contains(text, substring) {
			return true
		}
	}
	return false
}

func getHTTPStatus(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

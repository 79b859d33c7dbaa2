package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"planora/app/domain"
	"planora/app/port"
	apperrors "planora/app/utils/errors"
)

const (
	headerSessionToken   = "X-Session-Token"
	headerIdempotencyKey = "Idempotency-Key"
	bearerPrefix         = "Bearer "
)

// AccountHandler exposes account creation, sign-in and sign-out over HTTP
type AccountHandler struct {
	accounts port.AccountUsecase
	logger   *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts port.AccountUsecase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger.With("component", "account_handler"),
	}
}

// CreateAccount handles POST /v1/accounts
// @Summary Create a company and its first user
// @Tags accounts
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param Idempotency-Key header string false "Client generated request id"
// @Success 201 {object} domain.ActionResult[domain.AccountData]
// @Failure 400,409,500,502,504 {object} domain.ActionResult[domain.AccountData]
// @Router /v1/accounts [post]
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	fields, err := readFields(c)
	if err != nil {
		return err
	}

	if key := strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey)); key != "" {
		fields[domain.FieldRequestID] = key
	}

	result := h.accounts.CreateAccount(c.Request().Context(), fields)
	return respond(c, http.StatusCreated, result)
}

// SignIn handles POST /v1/auth/sign-in
// @Summary Sign in with email and password
// @Tags authentication
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Success 200 {object} domain.ActionResult[domain.SignInData]
// @Failure 400,401,403,502,504 {object} domain.ActionResult[domain.SignInData]
// @Router /v1/auth/sign-in [post]
func (h *AccountHandler) SignIn(c echo.Context) error {
	fields, err := readFields(c)
	if err != nil {
		return err
	}

	result := h.accounts.SignIn(c.Request().Context(), fields)
	if result.Success && result.Data != nil && result.Data.Session != nil {
		c.Response().Header().Set(headerSessionToken, result.Data.Session.Token)
	}
	return respond(c, http.StatusOK, result)
}

// SignOut handles POST /v1/auth/sign-out
// @Summary Revoke the caller's session
// @Tags authentication
// @Param X-Session-Token header string false "Session token"
// @Success 204
// @Failure 401,502 {object} domain.ActionResult[struct{}]
// @Router /v1/auth/sign-out [post]
func (h *AccountHandler) SignOut(c echo.Context) error {
	result := h.accounts.SignOut(c.Request().Context(), sessionToken(c.Request()))
	if result.Success {
		return c.NoContent(http.StatusNoContent)
	}
	return respond(c, http.StatusNoContent, result)
}

func respond[T any](c echo.Context, successStatus int, result domain.ActionResult[T]) error {
	if result.Success {
		return c.JSON(successStatus, result)
	}
	return c.JSON(apperrors.StatusForKind(result.Code), result)
}

// sessionToken reads the X-Session-Token header, falling back to a bearer
// Authorization header.
func sessionToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(headerSessionToken)); token != "" {
		return token
	}
	auth := r.Header.Get(echo.HeaderAuthorization)
	if len(auth) > len(bearerPrefix) && strings.EqualFold(auth[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(auth[len(bearerPrefix):])
	}
	return ""
}

// readFields accepts a nested JSON object or a form with dotted keys and
// returns the submission keyed by dotted path.
func readFields(c echo.Context) (domain.Fields, error) {
	req := c.Request()
	fields := domain.Fields{}

	contentType := req.Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEApplicationForm) || strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		form, err := c.FormParams()
		if err != nil {
			return nil, apperrors.NewBadRequest("malformed form body", err)
		}
		for key, values := range form {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}
		return fields, nil
	}

	if req.ContentLength == 0 {
		return fields, nil
	}

	var body map[string]interface{}
	if err := c.Echo().JSONSerializer.Deserialize(c, &body); err != nil {
		return nil, apperrors.NewBadRequest("malformed JSON body", err)
	}
	flatten("", body, fields)
	return fields, nil
}

func flatten(prefix string, value interface{}, out domain.Fields) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, child := range v {
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			flatten(path, child, out)
		}
	case string:
		out[prefix] = v
	case float64:
		out[prefix] = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		out[prefix] = strconv.FormatBool(v)
	case nil:
		// absent
	default:
		// Arrays never map onto a field; keep the path so validation reports it
		out[prefix] = ""
	}
}

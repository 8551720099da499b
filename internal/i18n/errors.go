package i18n

import (
	"errors"
	"net/http"

	"github.com/archnets/learn-miniapp/internal/api"
	"github.com/archnets/learn-miniapp/internal/host"
)

// ErrorText turns an error into a message the user can act on.
func ErrorText(lang string, err error) string {
	loc := Localizer(lang)
	if err == nil {
		return ""
	}
	if errors.Is(err, host.ErrUnavailable) {
		return T(loc, "error_host_unavailable")
	}

	apiErr, ok := api.AsError(err)
	if !ok {
		return T(loc, "error_unknown")
	}
	switch {
	case apiErr.IsNetworkError():
		return T(loc, "error_network")
	case api.IsAuthError(apiErr):
		return T(loc, "error_auth")
	case api.IsNotFound(apiErr):
		return T(loc, "error_not_found")
	case apiErr.Kind == api.CodeValidation ||
		apiErr.StatusCode == http.StatusBadRequest ||
		apiErr.StatusCode == http.StatusUnprocessableEntity:
		return TWithData(loc, "error_validation", map[string]any{"Message": apiErr.Message})
	case apiErr.IsServerError():
		return T(loc, "error_server")
	}
	return T(loc, "error_unknown")
}

package handler

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	integrationapp "github.com/morganchorlton3/order-tracker/internal/application/integration"
	"github.com/morganchorlton3/order-tracker/internal/domain/order"
)

// AuthHandler handles marketplace OAuth endpoints
type AuthHandler struct {
	BaseHandler
	oauthService *integrationapp.OAuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(oauthService *integrationapp.OAuthService) *AuthHandler {
	return &AuthHandler{oauthService: oauthService}
}

// The callback renders a small HTML page instead of JSON: the provider
// redirects the user's browser here, usually inside a popup opened by the
// frontend. The page reports the result to the opener and closes itself,
// falling back to a redirect when there is no opener.
var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<p>{{.Message}}</p>
<script>
if (window.opener) {
  window.opener.postMessage({type: {{.EventType}}, shop_name: {{.ShopName}}, error: {{.Error}}}, "*");
  window.close();
} else {
  setTimeout(function () { window.location.href = "/sync"; }, 2000);
}
</script>
</body>
</html>
`))

type callbackPageData struct {
	Title     string
	Message   string
	EventType string
	ShopName  string
	Error     string
}

// Authorize starts the OAuth flow and returns the provider URL to visit
func (h *AuthHandler) Authorize(c *gin.Context) {
	source, ok := h.parseSource(c)
	if !ok {
		return
	}

	resp, err := h.oauthService.Begin(c.Request.Context(), source)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Callback completes the OAuth flow from the provider redirect
func (h *AuthHandler) Callback(c *gin.Context) {
	source := order.Source(c.Param("source"))
	eventPrefix := strings.ToUpper(source.String())

	if !source.IsValid() {
		h.renderCallback(c, http.StatusBadRequest, callbackPageData{
			Title:     "Authorization failed",
			Message:   "Unknown marketplace",
			EventType: eventPrefix + "_AUTH_ERROR",
			Error:     "unknown marketplace source",
		})
		return
	}

	result, err := h.oauthService.Complete(
		c.Request.Context(),
		source,
		c.Query("code"),
		c.Query("state"),
		c.Query("error"),
		c.Query("error_description"),
	)
	if err != nil {
		h.renderCallback(c, http.StatusBadRequest, callbackPageData{
			Title:     "Authorization failed",
			Message:   "Authorization failed: " + err.Error(),
			EventType: eventPrefix + "_AUTH_ERROR",
			Error:     err.Error(),
		})
		return
	}

	h.renderCallback(c, http.StatusOK, callbackPageData{
		Title:     "Authorization complete",
		Message:   "Connected to " + result.ShopName + ". You can close this window.",
		EventType: eventPrefix + "_AUTH_SUCCESS",
		ShopName:  result.ShopName,
	})
}

// Status reports the credential state for the source
func (h *AuthHandler) Status(c *gin.Context) {
	source, ok := h.parseSource(c)
	if !ok {
		return
	}

	resp, err := h.oauthService.Status(c.Request.Context(), source)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *AuthHandler) parseSource(c *gin.Context) (order.Source, bool) {
	source := order.Source(c.Param("source"))
	if !source.IsValid() {
		h.BadRequest(c, "Unknown marketplace source")
		return "", false
	}
	return source, true
}

func (h *AuthHandler) renderCallback(c *gin.Context, status int, data callbackPageData) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := callbackPage.Execute(c.Writer, data); err != nil {
		c.String(http.StatusInternalServerError, "failed to render page")
	}
}

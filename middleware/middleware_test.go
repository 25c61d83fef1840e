package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Adarsh0311/shopsphere-backend/apperror"
	"github.com/Adarsh0311/shopsphere-backend/auth"
	"github.com/Adarsh0311/shopsphere-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(tokens *auth.TokenIssuer) *gin.Engine {
	r := gin.New()
	r.GET("/me", ValidateToken(tokens), func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID})
	})
	r.GET("/admin", ValidateToken(tokens), RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func tokenFor(t *testing.T, tokens *auth.TokenIssuer, roles ...string) string {
	t.Helper()
	user := models.User{ID: "user-1", Username: "jane"}
	for _, r := range roles {
		user.Roles = append(user.Roles, models.Role{Name: r})
	}
	tok, _, err := tokens.Issue(user)
	require.NoError(t, err)
	return tok
}

func TestValidateToken(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	r := newRouter(tokens)
	tok := tokenFor(t, tokens, models.RoleUser)

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized},
		{"bearer header", "Bearer " + tok, "", http.StatusOK},
		{"raw header", tok, "", http.StatusOK},
		{"query param", "", tok, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/me"
			if tt.query != "" {
				target += "?token=" + url.QueryEscape(tt.query)
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), "user-1")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	r := newRouter(tokens)

	tests := []struct {
		roles []string
		want  int
	}{
		{[]string{models.RoleUser}, http.StatusForbidden},
		{[]string{models.RoleUser, models.RoleAdmin}, http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, tokens, tt.roles...))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.want, w.Code, tt.roles)
	}
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{apperror.NotFound("order not found with id: x"), http.StatusNotFound, "order not found with id: x"},
		{apperror.PaymentRequired("payment declined"), http.StatusPaymentRequired, "payment declined"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		RespondError(c, tt.err)

		assert.Equal(t, tt.code, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tt.msg, body["error"])
	}
}

func TestTelrWebhookAuth(t *testing.T) {
	const secret = "webhook-secret"
	r := gin.New()
	r.POST("/hook", TelrWebhookAuth(secret, false), func(c *gin.Context) { c.Status(http.StatusOK) })

	form := url.Values{
		"tran_store":  {"12345"},
		"tran_ref":    {"ref-1"},
		"tran_cartid": {"order-1"},
		"tran_status": {"A"},
		"tran_amount": {"20.00"},
	}
	form.Set("tran_check", TelrSignature(secret, form.Get))

	post := func(v url.Values) int {
		req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(v.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, post(form))

	tampered := url.Values{}
	for k, v := range form {
		tampered[k] = v
	}
	tampered.Set("tran_amount", "0.01")
	assert.Equal(t, http.StatusForbidden, post(tampered))

	form.Del("tran_check")
	assert.Equal(t, http.StatusForbidden, post(form))
}

func TestTelrWebhookAuthSandbox(t *testing.T) {
	r := gin.New()
	r.POST("/hook", TelrWebhookAuth("", true), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

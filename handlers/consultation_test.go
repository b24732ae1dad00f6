package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"zynex_site_go/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postVerify(t *testing.T, h *ConsultationHandler, body string) (int, map[string]interface{}) {
	_, c, rec := setupEcho(http.MethodPost, "/api/verify-consultation-recaptcha", strings.NewReader(body))
	c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	require.NoError(t, h.VerifyConsultationRecaptcha(c))
	return rec.Code, decodeBody(t, rec)
}

func TestVerifyConsultationRecaptcha(t *testing.T) {
	t.Run("Low score is forbidden", func(t *testing.T) {
		h := newTestConsultationHandler("secret", &stubVerifier{body: `{"success":true,"score":0.45}`})
		status, body := postVerify(t, h, `{"token":"abc"}`)

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["message"], "0.45")
		assert.Contains(t, body["message"], "0.6")
		assert.Equal(t, 0.45, body["score"])
	})

	t.Run("Good score is allowed", func(t *testing.T) {
		h := newTestConsultationHandler("secret", &stubVerifier{body: `{"success":true,"score":0.82}`})
		status, body := postVerify(t, h, `{"token":"abc"}`)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["success"])
		assert.Contains(t, body["message"], "0.82")
	})

	t.Run("Provider failure proceeds", func(t *testing.T) {
		h := newTestConsultationHandler("secret", &stubVerifier{body: `{"success":false,"error-codes":["timeout-or-duplicate"]}`})
		status, body := postVerify(t, h, `{"token":"abc"}`)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["success"])
		assert.Contains(t, body["message"], "did not succeed, but proceeding")
		_, hasScore := body["score"]
		assert.False(t, hasScore)
	})

	t.Run("Missing token", func(t *testing.T) {
		sv := &stubVerifier{body: `{"success":true,"score":0.9}`}
		h := newTestConsultationHandler("secret", sv)

		for _, payload := range []string{`{}`, `{"token":""}`, `{"token":"   "}`} {
			status, body := postVerify(t, h, payload)
			assert.Equal(t, http.StatusBadRequest, status, payload)
			assert.Equal(t, false, body["success"], payload)
		}
		assert.Empty(t, sv.tokens)
	})

	t.Run("Unreadable body proceeds", func(t *testing.T) {
		sv := &stubVerifier{body: `{"success":true,"score":0.1}`}
		h := newTestConsultationHandler("secret", sv)

		for _, payload := range []string{`not json`, `{"token":123}`} {
			status, body := postVerify(t, h, payload)
			assert.Equal(t, http.StatusOK, status, payload)
			assert.Equal(t, true, body["success"], payload)
			assert.Contains(t, body["message"], "server-side issue", payload)
			assert.NotEmpty(t, body["error"], payload)
		}
		assert.Empty(t, sv.tokens)
	})

	t.Run("Missing secret", func(t *testing.T) {
		sv := &stubVerifier{body: `{"success":true,"score":0.9}`}
		h := newTestConsultationHandler("", sv)
		status, body := postVerify(t, h, `{"token":"abc"}`)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Server configuration error.", body["message"])
		assert.Empty(t, sv.tokens)
	})

	t.Run("Provider unreachable proceeds with error text", func(t *testing.T) {
		h := newTestConsultationHandler("secret", &stubVerifier{err: errors.New("dial tcp: i/o timeout")})
		status, body := postVerify(t, h, `{"token":"abc"}`)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "dial tcp: i/o timeout", body["error"])
	})
}

func postBookCall(t *testing.T, h *ConsultationHandler, token string, htmx bool) (int, http.Header, string) {
	form := url.Values{}
	form.Set("token", token)
	form.Set("action", "header_book_call")

	_, c, rec := setupEcho(http.MethodPost, "/book-call", strings.NewReader(form.Encode()))
	c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if htmx {
		c.Request().Header.Set("HX-Request", "true")
	}

	require.NoError(t, h.BookCall(c))
	return rec.Code, rec.Header(), rec.Body.String()
}

func TestBookCall(t *testing.T) {
	t.Run("Allowed htmx request redirects via header", func(t *testing.T) {
		sv := &stubVerifier{body: `{"success":true,"score":0.82}`}
		h := newTestConsultationHandler("secret", sv)

		status, header, _ := postBookCall(t, h, "browser-token", true)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, testSchedulingURL, header.Get("HX-Redirect"))
		assert.Equal(t, []string{"browser-token"}, sv.tokens)
	})

	t.Run("Allowed plain request redirects", func(t *testing.T) {
		h := newTestConsultationHandler("secret", &stubVerifier{body: `{"success":true}`})

		status, header, _ := postBookCall(t, h, "browser-token", false)
		assert.Equal(t, http.StatusSeeOther, status)
		assert.Equal(t, testSchedulingURL, header.Get("Location"))
	})

	t.Run("Low score renders the reason", func(t *testing.T) {
		h := newTestConsultationHandler("secret", &stubVerifier{body: `{"success":true,"score":0.45}`})

		status, header, body := postBookCall(t, h, "browser-token", true)
		assert.Equal(t, http.StatusOK, status)
		assert.Empty(t, header.Get("HX-Redirect"))
		assert.Contains(t, body, "0.45")
		assert.Contains(t, body, `role="alert"`)

		status, _, _ = postBookCall(t, h, "browser-token", false)
		assert.Equal(t, http.StatusUnprocessableEntity, status)
	})

	t.Run("No token means reCAPTCHA was not ready", func(t *testing.T) {
		sv := &stubVerifier{body: `{"success":true,"score":0.9}`}
		h := newTestConsultationHandler("secret", sv)

		status, header, body := postBookCall(t, h, "", true)
		assert.Equal(t, http.StatusOK, status)
		assert.Empty(t, header.Get("HX-Redirect"))
		assert.Contains(t, body, "not available at the moment")
		assert.Empty(t, sv.tokens)
	})

	t.Run("Misconfigured server refuses", func(t *testing.T) {
		h := newTestConsultationHandler("", &stubVerifier{body: `{"success":true,"score":0.9}`})

		_, header, body := postBookCall(t, h, "browser-token", true)
		assert.Empty(t, header.Get("HX-Redirect"))
		assert.Contains(t, body, "Server configuration error.")
	})
}

func TestBookingWidget(t *testing.T) {
	_, c, rec := setupEcho(http.MethodGet, "/partials/book-call?placement=footer", nil)
	c.Get("config").(*config.Config).RecaptchaSiteKey = "site-key"

	require.NoError(t, BookingWidget(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `id="footer-book-call"`)
	assert.Contains(t, body, `data-recaptcha-action="footer_book_call"`)
	assert.Contains(t, body, "render=site-key")
}

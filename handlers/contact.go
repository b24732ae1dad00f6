package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"
	"zynex_site_go/models"
	"zynex_site_go/services"
	"zynex_site_go/templates/partials"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// VisitorCookieName identifies an anonymous visitor across contact submissions
const VisitorCookieName = "visitor_id"

// ContactHandler accepts contact form submissions
type ContactHandler struct {
	Service *services.ContactService
}

func NewContactHandler(service *services.ContactService) *ContactHandler {
	return &ContactHandler{Service: service}
}

// SubmitContact handles POST /api/contact (JSON or form encoded)
func (h *ContactHandler) SubmitContact(c echo.Context) error {
	var fields models.ContactFields
	if err := c.Bind(&fields); err != nil {
		return h.respond(c, http.StatusBadRequest, false, "Invalid form submission.")
	}

	visitorID := ensureVisitorID(c)

	submission, err := h.Service.Submit(c.Request().Context(), visitorID, fields)
	if err != nil {
		if errors.Is(err, services.ErrEmptyContactForm) || errors.Is(err, services.ErrMissingVisitor) {
			return h.respond(c, http.StatusBadRequest, false, "Please fill in at least one field.")
		}
		log.Printf("[ERROR] Error submitting contact form: %v", err)
		return h.respond(c, http.StatusInternalServerError, false, "We could not send your message. Please try again.")
	}

	if isHTMX(c) {
		return render(c, http.StatusOK, partials.ContactResult(true, "Thanks! We will get back to you shortly."))
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"id":      submission.ID,
	})
}

func (h *ContactHandler) respond(c echo.Context, status int, ok bool, message string) error {
	if isHTMX(c) {
		// htmx only swaps 2xx responses by default
		return render(c, http.StatusOK, partials.ContactResult(ok, message))
	}
	return c.JSON(status, map[string]interface{}{
		"success": ok,
		"message": message,
	})
}

// ensureVisitorID returns the visitor cookie, issuing a new one when absent
func ensureVisitorID(c echo.Context) string {
	if cookie, err := c.Cookie(VisitorCookieName); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}

	id := uuid.New().String()
	c.SetCookie(&http.Cookie{
		Name:     VisitorCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})
	return id
}

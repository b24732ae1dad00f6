package handlers

import (
	"context"
	"net/http"
	"zynex_site_go/config"
	"zynex_site_go/services"
	"zynex_site_go/services/gate"
	"zynex_site_go/templates/partials"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// ConsultationHandler serves the verification endpoint and the server-side booking trigger
type ConsultationHandler struct {
	Verifier      *services.ConsultationVerifier
	SchedulingURL string
}

func NewConsultationHandler(verifier *services.ConsultationVerifier, schedulingURL string) *ConsultationHandler {
	return &ConsultationHandler{Verifier: verifier, SchedulingURL: schedulingURL}
}

// VerifyConsultationRecaptcha handles POST /api/verify-consultation-recaptcha
func (h *ConsultationHandler) VerifyConsultationRecaptcha(c echo.Context) error {
	var req services.VerificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, h.Verifier.ProceedDespite(err))
	}

	status, decision := h.Verifier.Decide(c.Request().Context(), req)
	return c.JSON(status, decision)
}

// BookCall handles POST /book-call. The browser sends the token it obtained from
// the reCAPTCHA script; a fresh gate verifies it in-process and either redirects
// to the scheduling page or renders the reason inline.
func (h *ConsultationHandler) BookCall(c echo.Context) error {
	action := c.FormValue("action")
	if action == "" {
		action = gate.DefaultAction
	}

	var target string
	g := gate.New(gate.Options{
		Issuer:    gate.StaticIssuer{Token: c.FormValue("token")},
		Endpoint:  h.localEndpoint(action),
		Navigator: gate.NavigatorFunc(func(t string) { target = t }),
		Action:    action,
		Target:    h.SchedulingURL,
	})

	if g.TriggerRedirect(c.Request().Context()) == gate.StateSuccess {
		if isHTMX(c) {
			c.Response().Header().Set("HX-Redirect", target)
			return c.NoContent(http.StatusOK)
		}
		return c.Redirect(http.StatusSeeOther, target)
	}

	message := gate.MsgRejected
	if lastErr := g.LastError(); lastErr != nil {
		message = *lastErr
	}

	status := http.StatusUnprocessableEntity
	if isHTMX(c) {
		// htmx only swaps 2xx responses by default
		status = http.StatusOK
	}
	return render(c, status, partials.GateError(message))
}

func (h *ConsultationHandler) localEndpoint(action string) gate.DecisionSource {
	return gate.EndpointFunc(func(ctx context.Context, token string) (int, gate.Decision, error) {
		status, d := h.Verifier.Decide(ctx, services.VerificationRequest{Token: token, Action: action})
		return status, gate.Decision{
			Success: d.Allowed,
			Message: d.Message,
			Score:   d.Score,
			Error:   d.Error,
		}, nil
	})
}

// BookingWidget handles GET /partials/book-call and renders one independent
// booking trigger; placement ("header", "footer", "contact") scopes its ids and action label.
func BookingWidget(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)

	placement := c.QueryParam("placement")
	if placement == "" {
		placement = "header"
	}
	action := placement + "_book_call"

	return render(c, http.StatusOK, templ.Join(
		partials.RecaptchaScript(cfg.RecaptchaSiteKey),
		partials.BookCallButton(placement+"-book-call", cfg.RecaptchaSiteKey, action, "Book a call"),
	))
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
)

// MinimumScore is the score below which a successful verification is rejected
const MinimumScore = 0.6

// DecisionReason identifies which branch of the admission policy produced a decision
type DecisionReason string

const (
	ReasonTokenMissing   DecisionReason = "token_missing"
	ReasonNotConfigured  DecisionReason = "not_configured"
	ReasonUpstreamStatus DecisionReason = "upstream_status"
	ReasonLowScore       DecisionReason = "low_score"
	ReasonUnverified     DecisionReason = "unverified"
	ReasonScoreAccepted  DecisionReason = "score_accepted"
	ReasonNoScore        DecisionReason = "no_score"
	ReasonServerIssue    DecisionReason = "server_issue"
)

// VerificationRequest is built fresh for every click and never stored
type VerificationRequest struct {
	Token  string `json:"token" form:"token"`
	Action string `json:"action,omitempty" form:"action"`
}

// VerificationDecision is the endpoint's answer. Allowed is serialized as "success"
// to match what the browser hook reads.
type VerificationDecision struct {
	Allowed bool           `json:"success"`
	Message string         `json:"message"`
	Score   *float64       `json:"score,omitempty"`
	Error   string         `json:"error,omitempty"`
	Reason  DecisionReason `json:"-"`
}

// ConsultationVerifier applies the admission policy for the scheduling link.
// It fails closed only for a missing token, a missing secret and a non-2xx
// answer from the provider; everything else that goes wrong lets the visitor through.
type ConsultationVerifier struct {
	Secret   string
	Verifier SiteVerifier
	Metrics  *VerificationMetrics
}

// NewConsultationVerifier wires a verifier with its secret and provider client
func NewConsultationVerifier(secret string, verifier SiteVerifier, metrics *VerificationMetrics) *ConsultationVerifier {
	return &ConsultationVerifier{
		Secret:   secret,
		Verifier: verifier,
		Metrics:  metrics,
	}
}

// Decide returns the HTTP status and decision for one verification request
func (v *ConsultationVerifier) Decide(ctx context.Context, req VerificationRequest) (status int, decision VerificationDecision) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%v", r)
			log.Printf("[ERROR] Unexpected failure during reCAPTCHA verification: %v", err)
			status, decision = http.StatusOK, serverIssueDecision(err)
		}
		v.Metrics.observe(decision)
	}()

	return v.decide(ctx, req)
}

func (v *ConsultationVerifier) decide(ctx context.Context, req VerificationRequest) (int, VerificationDecision) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return http.StatusBadRequest, VerificationDecision{
			Message: "reCAPTCHA token is missing.",
			Reason:  ReasonTokenMissing,
		}
	}

	if strings.TrimSpace(v.Secret) == "" || v.Verifier == nil {
		log.Println("[ERROR] RECAPTCHA_SECRET_KEY is not set in environment variables.")
		return http.StatusInternalServerError, VerificationDecision{
			Message: "Server configuration error.",
			Reason:  ReasonNotConfigured,
		}
	}

	result, err := v.Verifier.Verify(ctx, v.Secret, token)
	if err != nil {
		var statusErr *UpstreamStatusError
		if errors.As(err, &statusErr) {
			log.Printf("[ERROR] Failed to fetch reCAPTCHA verification API: %s", statusErr.Status)
			return http.StatusInternalServerError, VerificationDecision{
				Message: "Failed to verify reCAPTCHA with Google.",
				Reason:  ReasonUpstreamStatus,
			}
		}
		log.Printf("[ERROR] Error during reCAPTCHA verification process: %v", err)
		return http.StatusOK, serverIssueDecision(err)
	}

	score, hasScore := result.Score()
	var scorePtr *float64
	if hasScore {
		scorePtr = &score
	}

	if result.Success && hasScore && score < MinimumScore {
		log.Printf("[INFO] reCAPTCHA score too low: %v (action %q). Rejecting.", score, req.Action)
		return http.StatusForbidden, VerificationDecision{
			Message: fmt.Sprintf("Your activity score (%.2f) is below the required threshold (%.1f). Please try again.", score, MinimumScore),
			Score:   scorePtr,
			Reason:  ReasonLowScore,
		}
	}

	decision := VerificationDecision{Allowed: true, Score: scorePtr}
	switch {
	case !result.Success:
		decision.Message = "reCAPTCHA verification did not succeed, but proceeding as per rules."
		decision.Reason = ReasonUnverified
		log.Printf("[WARNING] reCAPTCHA verification failed with Google, but allowing user through: %v", result.ErrorCodes)
	case hasScore:
		decision.Message = fmt.Sprintf("reCAPTCHA score (%.2f) is acceptable.", score)
		decision.Reason = ReasonScoreAccepted
	default:
		decision.Message = "reCAPTCHA score not available, proceeding as per rules."
		decision.Reason = ReasonNoScore
	}

	log.Printf("[INFO] %s action=%q", decision.Message, req.Action)
	return http.StatusOK, decision
}

// ProceedDespite records and returns the allow decision used when a request
// fails before the policy can run, such as an unreadable body
func (v *ConsultationVerifier) ProceedDespite(err error) VerificationDecision {
	log.Printf("[ERROR] Error during reCAPTCHA verification process: %v", err)
	decision := serverIssueDecision(err)
	v.Metrics.observe(decision)
	return decision
}

func serverIssueDecision(err error) VerificationDecision {
	return VerificationDecision{
		Allowed: true,
		Message: "Proceeding despite a server-side issue during reCAPTCHA check.",
		Error:   err.Error(),
		Reason:  ReasonServerIssue,
	}
}

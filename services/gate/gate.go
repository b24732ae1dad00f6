// Package gate guards the outbound scheduling link: a click obtains a fresh
// bot-check token, asks the verification endpoint for a decision and only
// navigates when the decision allows it.
package gate

import (
	"context"
	"errors"
	"log"
	"sync"
)

const (
	// DefaultAction is the action label sent with tokens when the caller gives none
	DefaultAction = "calendly_redirect"

	MsgUnavailable = "reCAPTCHA is not available at the moment. Please try again later."
	MsgRejected    = "reCAPTCHA verification failed or score too low. Please try again."
	MsgUnexpected  = "An unexpected error occurred while trying to redirect. Please try again."
)

// ErrIssuerUnavailable is returned by issuers that cannot produce a token yet
var ErrIssuerUnavailable = errors.New("token issuer unavailable")

// State is the lifecycle of one Gate
type State int

const (
	StateIdle State = iota
	StatePending
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TokenIssuer produces single-use tokens scoped to an action label
type TokenIssuer interface {
	Ready() bool
	IssueToken(ctx context.Context, action string) (string, error)
}

// Decision mirrors the endpoint's JSON body
type Decision struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Score   *float64 `json:"score,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// DecisionSource submits a token to the verification endpoint
type DecisionSource interface {
	Submit(ctx context.Context, token string) (status int, decision Decision, err error)
}

// Navigator performs the protected navigation
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(target string)

func (f NavigatorFunc) Navigate(target string) { f(target) }

// Options configures a Gate
type Options struct {
	Issuer    TokenIssuer
	Endpoint  DecisionSource
	Navigator Navigator
	Action    string
	Target    string
}

// Gate is one trigger control. Instances share nothing with each other.
// Concurrent triggers on the same Gate are not prevented; callers disable
// their trigger while IsBusy reports true.
type Gate struct {
	issuer   TokenIssuer
	endpoint DecisionSource
	nav      Navigator
	action   string
	target   string

	mu        sync.Mutex
	state     State
	lastError *string
}

// New creates an idle Gate
func New(opts Options) *Gate {
	action := opts.Action
	if action == "" {
		action = DefaultAction
	}
	return &Gate{
		issuer:   opts.Issuer,
		endpoint: opts.Endpoint,
		nav:      opts.Navigator,
		action:   action,
		target:   opts.Target,
	}
}

// TriggerRedirect runs one verification round trip and returns the resulting state.
// After a successful navigation the Gate stays in StateSuccess and further
// triggers do nothing.
func (g *Gate) TriggerRedirect(ctx context.Context) State {
	g.mu.Lock()
	if g.state == StateSuccess {
		g.mu.Unlock()
		return StateSuccess
	}
	g.state = StateIdle
	g.lastError = nil
	g.mu.Unlock()

	if g.issuer == nil || !g.issuer.Ready() {
		log.Println("[WARNING] Token issuer not yet available")
		return g.fail(MsgUnavailable)
	}

	g.setState(StatePending)

	token, err := g.issuer.IssueToken(ctx, g.action)
	if err != nil {
		log.Printf("[ERROR] Error during reCAPTCHA protected redirection: %v", err)
		if errors.Is(err, ErrIssuerUnavailable) {
			return g.fail(MsgUnavailable)
		}
		return g.fail(MsgUnexpected)
	}

	if g.endpoint == nil {
		log.Println("[ERROR] Gate has no verification endpoint")
		return g.fail(MsgUnexpected)
	}

	status, decision, err := g.endpoint.Submit(ctx, token)
	if err != nil {
		log.Printf("[ERROR] Error during reCAPTCHA protected redirection: %v", err)
		return g.fail(MsgUnexpected)
	}

	if status >= 200 && status <= 299 && decision.Success {
		g.setState(StateSuccess)
		if g.nav != nil {
			g.nav.Navigate(g.target)
		}
		return StateSuccess
	}

	msg := decision.Message
	if msg == "" {
		msg = MsgRejected
	}
	return g.fail(msg)
}

// IsBusy reports whether a verification is in flight or navigation has fired
func (g *Gate) IsBusy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == StatePending || g.state == StateSuccess
}

// LastError returns the message from the last failed trigger, or nil
func (g *Gate) LastError() *string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastError == nil {
		return nil
	}
	msg := *g.lastError
	return &msg
}

// State returns the current state
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Gate) setState(s State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}

func (g *Gate) fail(msg string) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = StateFailed
	g.lastError = &msg
	return StateFailed
}

package gate

import (
	"context"
	"strings"
)

// StaticIssuer hands out a token that was already issued elsewhere, typically by
// the reCAPTCHA script in the visitor's browser. An empty token means the script
// never became ready.
type StaticIssuer struct {
	Token string
}

func (s StaticIssuer) Ready() bool {
	return strings.TrimSpace(s.Token) != ""
}

func (s StaticIssuer) IssueToken(ctx context.Context, action string) (string, error) {
	if !s.Ready() {
		return "", ErrIssuerUnavailable
	}
	return s.Token, nil
}

// Command gatecheck runs one protected-redirect round trip against a deployed
// verification endpoint. It is meant for smoke-testing a deployment with a token
// copied from a browser session.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
	"zynex_site_go/config"
	"zynex_site_go/services/gate"
)

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080/api/verify-consultation-recaptcha", "verification endpoint URL")
	token := flag.String("token", "", "reCAPTCHA token issued by the browser")
	action := flag.String("action", gate.DefaultAction, "action label the token was issued for")
	target := flag.String("target", config.DefaultSchedulingURL, "scheduling URL reached on success")
	timeout := flag.Duration("timeout", 15*time.Second, "request timeout")
	flag.Parse()

	nav := gate.NavigatorFunc(func(t string) {
		fmt.Printf("navigate: %s\n", t)
	})

	g := gate.New(gate.Options{
		Issuer:    gate.StaticIssuer{Token: *token},
		Endpoint:  &gate.HTTPEndpoint{URL: *endpoint, HTTPClient: &http.Client{Timeout: *timeout}},
		Navigator: nav,
		Action:    *action,
		Target:    *target,
	})

	state := g.TriggerRedirect(context.Background())
	fmt.Printf("state: %s\n", state)

	if lastErr := g.LastError(); lastErr != nil {
		log.Printf("redirect refused: %s", *lastErr)
		os.Exit(1)
	}
}

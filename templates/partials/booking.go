package partials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"zynex_site_go/middleware"

	"github.com/a-h/templ"
)

// BookCallButton renders the "Book a call" trigger. The reCAPTCHA script fills
// the token field right before htmx posts the form; htmx disables the button
// while the request is in flight.
func BookCallButton(id, siteKey, action, label string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		vals := jsonAttr(map[string]string{"action": action})
		_, err := fmt.Fprintf(w, `<form id="%[1]s" hx-post="/book-call" hx-target="#%[1]s-error" hx-swap="innerHTML" hx-disabled-elt="find button" hx-vals='%[2]s' data-recaptcha-site-key="%[3]s" data-recaptcha-action="%[4]s">`+
			`<input type="hidden" name="token" value="">`+
			`<button type="submit" class="inline-flex items-center gap-x-2 py-2 px-3 bg-[#ff0] font-medium text-sm text-neutral-800 rounded-full disabled:opacity-50">%[5]s</button>`+
			`<div id="%[1]s-error"></div></form>`,
			templ.EscapeString(id),
			vals,
			templ.EscapeString(siteKey),
			templ.EscapeString(action),
			templ.EscapeString(label),
		)
		return err
	})
}

// RecaptchaScript loads reCAPTCHA v3 and fills each booking form's token right
// before htmx sends it. A missing grecaptcha leaves the token empty, which the
// server reports as "not available".
func RecaptchaScript(siteKey string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		nonce := templ.EscapeString(middleware.GetNonce(ctx))
		key := templ.EscapeString(siteKey)
		_, err := fmt.Fprintf(w, `<script nonce="%[1]s" src="https://www.google.com/recaptcha/api.js?render=%[2]s" async defer></script>`+
			`<script nonce="%[1]s">`+
			`document.addEventListener("htmx:confirm",function(e){`+
			`var f=e.target.closest("form[data-recaptcha-action]");`+
			`if(!f||!window.grecaptcha||!grecaptcha.execute)return;`+
			`e.preventDefault();`+
			`grecaptcha.ready(function(){grecaptcha.execute(f.dataset.recaptchaSiteKey,{action:f.dataset.recaptchaAction})`+
			`.then(function(t){f.querySelector("input[name=token]").value=t;e.detail.issueRequest(true);})`+
			`.catch(function(){e.detail.issueRequest(true);});});`+
			`});</script>`, nonce, key)
		return err
	})
}

// GateError is the inline message shown next to the trigger when the redirect is refused
func GateError(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<p class="mt-2 text-sm text-red-400" role="alert">`+templ.EscapeString(message)+`</p>`)
		return err
	})
}

// ContactResult is the inline status shown under the contact form
func ContactResult(ok bool, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		class := "text-red-400"
		if ok {
			class = "text-green-400"
		}
		_, err := fmt.Fprintf(w, `<p class="mt-2 text-sm %s">%s</p>`, class, templ.EscapeString(message))
		return err
	})
}

// jsonAttr marshals v for a single-quoted attribute, returning "{}" on error
func jsonAttr(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		fmt.Printf("Error marshaling JSON: %v\n", err)
		return "{}"
	}
	return templ.EscapeString(string(b))
}

// Package mail renders and delivers transactional email. Delivery is
// fire-and-forget relative to the request path: callers enqueue, a worker
// sends, and failures are logged rather than propagated.
package mail

import (
	"bytes"
	"context"
	"html/template"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type templateData struct {
	Name         string
	Intro        string
	Instructions string
	ButtonText   string
	Link         string
	Outro        string
}

var htmlTmpl = template.Must(template.New("mail").Parse(`<!doctype html>
<html>
<body style="font-family:Helvetica,Arial,sans-serif;color:#24292e">
  <p>Hi {{.Name}},</p>
  <p>{{.Intro}}</p>
  <p>{{.Instructions}}</p>
  <p><a href="{{.Link}}" style="background:#2d7ff9;color:#fff;padding:10px 22px;border-radius:4px;text-decoration:none">{{.ButtonText}}</a></p>
  <p>{{.Outro}}</p>
</body>
</html>
`))

var textTmpl = template.Must(template.New("mail").Parse(`Hi {{.Name}},

{{.Intro}}

{{.Instructions}}
{{.Link}}

{{.Outro}}
`))

func render(to, subject string, data templateData) Message {
	var html, text bytes.Buffer
	// The templates are static; rendering them cannot fail at runtime.
	_ = htmlTmpl.Execute(&html, data)
	_ = textTmpl.Execute(&text, data)
	return Message{To: to, Subject: subject, HTML: html.String(), Text: text.String()}
}

// Verification builds the email-verification message with the raw token link.
func Verification(to, username, verifyURL string) Message {
	return render(to, "Please verify your email", templateData{
		Name:         username,
		Intro:        "Welcome to TaskHub! We're excited to have you on board.",
		Instructions: "To get started, please confirm your email address:",
		ButtonText:   "Confirm your account",
		Link:         verifyURL,
		Outro:        "Need help, or have questions? Just reply to this email.",
	})
}

// PasswordReset builds the forgot-password message with the raw token link.
func PasswordReset(to, username, resetURL string) Message {
	return render(to, "Reset your password", templateData{
		Name:         username,
		Intro:        "We received a request to reset your password.",
		Instructions: "To choose a new password, please click here:",
		ButtonText:   "Reset password",
		Link:         resetURL,
		Outro:        "If you did not request this, you can safely ignore this email.",
	})
}

package mailer

import (
	"bytes"
	"html/template"
)

var verificationTemplate = template.Must(template.New("verification").Parse(
	`<p>Hello {{.Username}},</p>
<p>Your verification code is <strong>{{.Code}}</strong>.</p>
<p>It expires in {{.Minutes}} minutes.</p>`))

// VerificationSubject is the subject line of verification mail.
const VerificationSubject = "Verify your email"

// VerificationBody renders the verification mail body.
func VerificationBody(username, code string, minutes int) (string, error) {
	var buf bytes.Buffer
	err := verificationTemplate.Execute(&buf, struct {
		Username string
		Code     string
		Minutes  int
	}{username, code, minutes})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

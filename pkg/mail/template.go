package mail

import (
	"bytes"
	"text/template"
	"time"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`Hello {{ .Username }},

Someone asked to add {{ .Email }} to the {{ .ServerName }} account "{{ .Username }}".

To confirm this is correct, go to {{ .Link }}

The link expires on {{ .ExpiresAt.UTC.Format "2006-01-02 15:04 MST" }}.
If you didn't ask for this, you can ignore this email.
`))

// Confirmation holds the data of a confirmation email.
type Confirmation struct {
	ServerName string
	Username   string
	Email      string
	Link       string
	ExpiresAt  time.Time
}

// Message renders the confirmation email.
func (c Confirmation) Message() (Message, error) {
	var b bytes.Buffer
	if err := confirmationTmpl.Execute(&b, c); err != nil {
		return Message{}, err //nolint:wrapcheck
	}

	return Message{
		To:      c.Email,
		Subject: "[" + c.ServerName + "] Please confirm your email address",
		Body:    b.String(),
	}, nil
}

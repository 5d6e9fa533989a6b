// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// PasswordResetSubject is the subject line of the reset email.
const PasswordResetSubject = "Password Reset Request"

type passwordResetData struct {
	Name string
	Link string
}

var passwordResetText = texttemplate.Must(texttemplate.New("reset.txt").Parse(
	`Hello {{.Name}},

You requested a password reset. Open the link below to choose a new password:

{{.Link}}

The link expires in one hour. If you did not request this, ignore this email.
`))

var passwordResetHTML = htmltemplate.Must(htmltemplate.New("reset.html").Parse(
	`<p>Hello {{.Name}},</p>
<p>You requested a password reset. Click the link below to choose a new password:</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>The link expires in one hour. If you did not request this, ignore this email.</p>
`))

// PasswordResetMessage renders the reset email for one recipient.
func PasswordResetMessage(to, name, link string) (Message, error) {
	data := passwordResetData{Name: name, Link: link}

	var text, html bytes.Buffer
	if err := passwordResetText.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("mail: render text body: %w", err)
	}
	if err := passwordResetHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("mail: render html body: %w", err)
	}

	return Message{
		To:      to,
		Subject: PasswordResetSubject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

package mail

import (
	"fmt"
	"html"
)

// Verification is the account verification email.
func Verification(to, firstName, link string) Message {
	return Message{
		To:      to,
		Subject: "Verify your account",
		HTML: fmt.Sprintf(`<h1>Welcome, %s!</h1>
<p>Click below to verify your account:</p>
<p><a href="%s">Verify Email</a></p>`, html.EscapeString(firstName), html.EscapeString(link)),
	}
}

// PasswordReset carries a one-hour reset link.
func PasswordReset(to, link string) Message {
	return Message{
		To:      to,
		Subject: "Reset your password",
		HTML: fmt.Sprintf(`<h1>Password Reset Request</h1>
<p>Click the link below to reset your password. This link is valid for 1 hour.</p>
<p><a href="%s">Reset Password</a></p>`, html.EscapeString(link)),
	}
}

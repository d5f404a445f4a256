package mailer

import (
	"fmt"
	"time"
)

// WelcomeClerk renders the onboarding mail for a freshly created clerk.
// The temporary password is sent in plaintext on purpose: the clerk must
// change it at first login.
func WelcomeClerk(name, email, tempPassword string) (subject, html string) {
	subject = "Welcome to PrintHub"
	html = fmt.Sprintf(`<h2>Welcome, %s</h2>
<p>An account has been created for you at your print station.</p>
<p>Sign in with:</p>
<ul>
  <li>Email: <b>%s</b></li>
  <li>Temporary password: <b>%s</b></li>
</ul>
<p>Please change this password after your first login.</p>`, name, email, tempPassword)
	return subject, html
}

// OTPCode renders the one-time verification code mail.
func OTPCode(code string, ttl time.Duration) (subject, html string) {
	subject = "Your PrintHub verification code"
	html = fmt.Sprintf(`<h2>Email verification</h2>
<p>Your verification code is:</p>
<h1 style="letter-spacing:4px">%s</h1>
<p>The code expires in %d minutes.</p>`, code, int(ttl.Minutes()))
	return subject, html
}

package mailer

import "fmt"

// ResponseAlertHTML is the "new response received" notification body.
func ResponseAlertHTML(name, formName string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; padding: 16px; line-height: 1.6; font-size: 15px;">
	<p>Hello <b>%s</b>,</p>
	<p>You have received a new submission on your form:</p>
	<p style="margin: 8px 0;"><b>Form Name:</b> %s</p>
	<p>You can log in to your dashboard to view the full response details.</p>
	<p style="margin-top: 24px;">Regards,<br/><b>Your Team</b></p>
</div>`, name, formName)
}

// LoginDetailsHTML is the first-login credentials body sent when a new
// account admin is created.
func LoginDetailsHTML(name, email, password string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; padding: 16px; line-height: 1.6; font-size: 15px;">
	<p>Hello <b>%s</b>,</p>
	<p>Your account has been created. Use these credentials to log in:</p>
	<p style="margin: 8px 0;"><b>Email:</b> %s<br/><b>Password:</b> %s</p>
	<p>Please change your password after your first login.</p>
	<p style="margin-top: 24px;">Regards,<br/><b>Your Team</b></p>
</div>`, name, email, password)
}

// PasswordResetHTML is the reset-link body.
func PasswordResetHTML(resetURL string) string {
	return fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; padding: 16px; line-height: 1.6; font-size: 15px;">
	<p>We received a request to reset your password.</p>
	<p><a href="%s">Click here to choose a new password.</a></p>
	<p>This link expires in 15 minutes. If you did not request a reset, ignore this email.</p>
</div>`, resetURL)
}

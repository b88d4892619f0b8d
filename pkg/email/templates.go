package email

import (
	"fmt"
)

// AccountEmailData contains the data needed for account lifecycle email templates.
type AccountEmailData struct {
	FirstName    string
	Email        string
	PracticeName string
	Role         string
	TempPassword string
	AppName      string
	BaseURL      string
}

// ResetEmailData contains the data needed for password reset email templates.
type ResetEmailData struct {
	FirstName     string
	Email         string
	OTP           string
	ResetURL      string
	OTPExpiryMin  int
	LinkExpiryMin int
	AppName       string
}

// BuildAccountCreatedEmail creates the welcome email for a newly provisioned
// staff account, including the generated temporary password.
func BuildAccountCreatedEmail(data AccountEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "Journi"
	}

	firstName := data.FirstName
	if firstName == "" {
		firstName = "there"
	}

	subject := fmt.Sprintf("Your %s account has been created", appName)

	textBody := fmt.Sprintf(`Hi %s,

An account has been created for you at %s as %s of %s.

Sign in with:
Email: %s
Temporary password: %s

Please change your password after your first login.

Thanks,
The %s Team`,
		firstName, appName, data.Role, data.PracticeName, data.Email, data.TempPassword, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>An account has been created for you at %s as <strong>%s</strong> of <strong>%s</strong>.</p>
    <p>Sign in with:</p>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px; font-family: monospace;">Email: %s<br>Temporary password: %s</p>
    <p>Please change your password after your first login.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		firstName, appName, data.Role, data.PracticeName, data.Email, data.TempPassword, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildAddedToPracticeEmail notifies an existing user that they were added
// to another practice.
func BuildAddedToPracticeEmail(data AccountEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "Journi"
	}

	firstName := data.FirstName
	if firstName == "" {
		firstName = "there"
	}

	subject := fmt.Sprintf("You've been added to %s", data.PracticeName)

	textBody := fmt.Sprintf(`Hi %s,

You've been added to %s as %s.

Sign in with your existing %s credentials to get started.

Thanks,
The %s Team`,
		firstName, data.PracticeName, data.Role, appName, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>You've been added to <strong>%s</strong> as <strong>%s</strong>.</p>
    <p>Sign in with your existing %s credentials to get started.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		firstName, data.PracticeName, data.Role, appName, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildPasswordResetEmail carries both the one-time code and the reset link.
func BuildPasswordResetEmail(data ResetEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "Journi"
	}

	firstName := data.FirstName
	if firstName == "" {
		firstName = "there"
	}

	subject := fmt.Sprintf("Reset your %s password", appName)

	textBody := fmt.Sprintf(`Hi %s,

We received a request to reset your %s password.

Your one-time code: %s (valid for %d minutes)

Or reset directly using this link (valid for %d minutes):
%s

If you didn't request this, you can safely ignore this email.

Thanks,
The %s Team`,
		firstName, appName, data.OTP, data.OTPExpiryMin, data.LinkExpiryMin, data.ResetURL, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>We received a request to reset your %s password.</p>
    <p>Your one-time code (valid for %d minutes):</p>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px; font-family: monospace; font-size: 24px; letter-spacing: 4px; text-align: center;">%s</p>
    <p>Or reset directly using the button below (valid for %d minutes):</p>
    <p style="text-align: center; margin: 30px 0;">
        <a href="%s" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Reset Password</a>
    </p>
    <p style="color: #6b7280; font-size: 14px;">If you didn't request this, you can safely ignore this email.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		firstName, appName, data.OTPExpiryMin, data.OTP, data.LinkExpiryMin, data.ResetURL, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildPasswordChangedEmail notifies the user after a successful password
// change or reset. All their other sessions have been signed out.
func BuildPasswordChangedEmail(data AccountEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "Journi"
	}

	firstName := data.FirstName
	if firstName == "" {
		firstName = "there"
	}

	subject := fmt.Sprintf("Your %s password was changed", appName)

	textBody := fmt.Sprintf(`Hi %s,

Your %s password was just changed. All other sessions have been signed out.

If this wasn't you, reset your password immediately and contact support.

Thanks,
The %s Team`,
		firstName, appName, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>Your %s password was just changed. All other sessions have been signed out.</p>
    <p style="color: #b91c1c;">If this wasn't you, reset your password immediately and contact support.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		firstName, appName, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

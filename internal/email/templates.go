package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Имена шаблонов писем
const (
	TemplateVerification        = "verification"
	TemplatePasswordReset       = "password_reset"
	TemplateWelcome             = "welcome"
	TemplateNewJobAlert         = "new_job_alert"
	TemplateApplicationReceived = "application_received"
	TemplateApplicationDecision = "application_decision"
)

// Subjects по имени шаблона
var templateSubjects = map[string]string{
	TemplateVerification:        "Verify Your TradeHub Account",
	TemplatePasswordReset:       "Password Reset Request",
	TemplateWelcome:             "Welcome to TradeHub",
	TemplateNewJobAlert:         "New Job In Your Trade",
	TemplateApplicationReceived: "New Application For Your Job",
	TemplateApplicationDecision: "Update On Your Job Application",
}

const baseLayout = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="text-align: center; margin-bottom: 20px;">
    <h1 style="color: #4CAF50;">TradeHub</h1>
  </div>
  <div style="background: #f9f9f9; padding: 20px; border-radius: 5px;">
    %s
  </div>
  <div style="margin-top: 20px; font-size: 12px; color: #666; text-align: center;">
    <p>TradeHub | Connecting quality tradespeople with customers</p>
  </div>
</div>`

var templateBodies = map[string]string{
	TemplateVerification: `
    <h2>Email Verification</h2>
    <p>Hello {{.Name}},</p>
    <p>Thank you for registering with TradeHub. To complete your registration, please verify your email address:</p>
    <div style="text-align: center; margin: 30px 0;">
      <a href="{{.Link}}" style="background-color: #4CAF50; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Verify My Email</a>
    </div>
    <p>This link will expire in 24 hours.</p>
    <p>If you did not create an account, please disregard this email.</p>`,

	TemplatePasswordReset: `
    <h2>Password Reset</h2>
    <p>Hello {{.Name}},</p>
    <p>We received a request to reset your password. Click the button below to create a new password:</p>
    <div style="text-align: center; margin: 30px 0;">
      <a href="{{.Link}}" style="background-color: #4CAF50; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Reset Password</a>
    </div>
    <p>This link will expire in 1 hour.</p>
    <p>If you didn't request a password reset, you can safely ignore this email.</p>`,

	TemplateWelcome: `
    <h2>Welcome!</h2>
    <p>Hello {{.Name}},</p>
    <p>Your email is verified. {{if .UnderReview}}Your account is under review and will be activated shortly.{{else}}You can now log in and start using TradeHub.{{end}}</p>`,

	TemplateNewJobAlert: `
    <h2>New Job In Your Trade</h2>
    <p>Hello {{.Name}},</p>
    <p>A customer just posted a job that matches your trade:</p>
    <p><strong>{{.JobTitle}}</strong></p>
    <div style="text-align: center; margin: 30px 0;">
      <a href="{{.Link}}" style="background-color: #4CAF50; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">View Job</a>
    </div>`,

	TemplateApplicationReceived: `
    <h2>New Application</h2>
    <p>Hello {{.Name}},</p>
    <p>A tradesperson applied for your job <strong>{{.JobTitle}}</strong>.</p>
    <div style="text-align: center; margin: 30px 0;">
      <a href="{{.Link}}" style="background-color: #4CAF50; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Review Applicants</a>
    </div>`,

	TemplateApplicationDecision: `
    <h2>Application {{.Decision}}</h2>
    <p>Hello {{.Name}},</p>
    <p>Your application for <strong>{{.JobTitle}}</strong> was {{.Decision}}.</p>`,
}

var parsedTemplates = map[string]*template.Template{}

func init() {
	for name, body := range templateBodies {
		parsedTemplates[name] = template.Must(
			template.New(name).Parse(fmt.Sprintf(baseLayout, body)),
		)
	}
}

// Render рендерит именованный шаблон и возвращает subject + html
func Render(templateName string, data TemplateData) (subject, html string, err error) {
	tmpl, ok := parsedTemplates[templateName]
	if !ok {
		return "", "", fmt.Errorf("unknown email template: %s", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render template %s: %w", templateName, err)
	}

	return templateSubjects[templateName], buf.String(), nil
}

package mailer

import (
	"fmt"
	"strings"
)

// Email types dispatched by the platform.
const (
	TypeBusinessApproved = "business_approved"
	TypeBusinessRejected = "business_rejected"
	TypePasswordReset    = "password_reset"
)

type template struct {
	Subject string
	Body    string
}

var templates = map[string]template{
	TypeBusinessApproved: {
		Subject: "Your franchise listing has been approved",
		Body: "Hello {{companyName}},\n\n" +
			"Good news: your registration for {{franchiseName}} has been reviewed and approved. " +
			"Your listing is now visible to investors on FranchiseHub.\n\n" +
			"The FranchiseHub team",
	},
	TypeBusinessRejected: {
		Subject: "Update on your franchise registration",
		Body: "Hello {{companyName}},\n\n" +
			"After review, your registration for {{franchiseName}} was not approved. " +
			"You can reply to this email if you believe additional documentation would change the outcome.\n\n" +
			"The FranchiseHub team",
	},
	TypePasswordReset: {
		Subject: "Your FranchiseHub password reset code",
		Body: "Hello,\n\n" +
			"Your password reset code is {{code}}. It expires in {{ttlMinutes}} minutes. " +
			"If you did not request a reset, ignore this email.\n\n" +
			"The FranchiseHub team",
	},
}

// Render produces the subject and body for an email type.
func Render(emailType string, data map[string]interface{}) (subject, body string, err error) {
	tmpl, ok := templates[emailType]
	if !ok {
		return "", "", fmt.Errorf("template not found for type: %s", emailType)
	}
	return renderTemplate(tmpl.Subject, data), renderTemplate(tmpl.Body, data), nil
}

func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if i, ok := v.(int); ok {
			value = fmt.Sprintf("%d", i)
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Blank out placeholders with no value so they never leak to recipients.
	for {
		start := strings.Index(result, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end < 0 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}

	return result
}

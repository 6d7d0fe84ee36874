// README: Default HTML templates per message kind.
package email

import (
	"fmt"
	"html/template"
	"strings"
)

var defaultTemplates = map[Kind]string{
	KindRideCreated:   `<p>Hi {{.name}},</p><p>Your ride request {{.ride_id}} was submitted and is awaiting approval.</p>`,
	KindRideApproved:  `<p>Hi {{.name}},</p><p>Your ride {{.ride_id}} was approved.</p>`,
	KindRideRejected:  `<p>Hi {{.name}},</p><p>Your ride {{.ride_id}} was rejected. Reason: {{.reason}}</p>`,
	KindRideCompleted: `<p>Hi {{.name}},</p><p>Your ride {{.ride_id}} is complete. Thanks for filling the trip form.</p>`,
	KindRideCancelled: `<p>Hi {{.name}},</p><p>Your ride {{.ride_id}} was cancelled. Reason: {{.reason}}</p>`,
	KindPasswordReset: `<p>Hi {{.name}},</p><p>Use this link to reset your password: {{.link}}</p>`,
}

var subjects = map[Kind]string{
	KindRideCreated:   "Ride request submitted",
	KindRideApproved:  "Ride approved",
	KindRideRejected:  "Ride rejected",
	KindRideCompleted: "Ride completed",
	KindRideCancelled: "Ride cancelled",
	KindPasswordReset: "Password reset",
}

type TemplateRenderer struct {
	templates map[Kind]*template.Template
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	r := &TemplateRenderer{templates: make(map[Kind]*template.Template, len(defaultTemplates))}
	for kind, body := range defaultTemplates {
		t, err := template.New(string(kind)).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", kind, err)
		}
		r.templates[kind] = t
	}
	return r, nil
}

func (r *TemplateRenderer) Render(kind Kind, data map[string]any) (string, error) {
	t, ok := r.templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown email kind %q", kind)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Subject returns the subject line for a kind.
func Subject(kind Kind) string {
	if s, ok := subjects[kind]; ok {
		return s
	}
	return "Motorpool notification"
}

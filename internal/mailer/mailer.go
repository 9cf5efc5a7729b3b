// Copyright 2026 The PulseFit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mailer delivers templated transactional email.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"

	"github.com/pulsefit/pulsefit/internal/config"
)

// Templates rendered by the SMTP mailer. Each template body is HTML with a
// Subject defined in subjects below.
const (
	TemplateResetCode = "password-reset"
	TemplateWelcome   = "welcome"
)

var subjects = map[string]string{
	TemplateResetCode: "Your password reset code",
	TemplateWelcome:   "Welcome to PulseFit",
}

var bodies = map[string]string{
	TemplateResetCode: `<p>Hi {{.Name}},</p>
<p>Your password reset code is <strong>{{.Code}}</strong>. It expires in 10 minutes.</p>
<p>If you did not request a reset, you can ignore this email.</p>`,
	TemplateWelcome: `<p>Hi {{.Name}},</p>
<p>Welcome to PulseFit. Your account is ready.</p>`,
}

// Mailer sends a rendered template to a single recipient.
type Mailer interface {
	Send(ctx context.Context, to, tmpl string, data map[string]any) error
}

// SMTPMailer sends mail over plain SMTP with AUTH.
type SMTPMailer struct {
	cfg       config.MailConfig
	templates map[string]*template.Template
}

// NewSMTPMailer parses the built-in templates and returns a ready mailer.
func NewSMTPMailer(cfg config.MailConfig) (*SMTPMailer, error) {
	templates := make(map[string]*template.Template, len(bodies))
	for name, body := range bodies {
		t, err := template.New(name).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = t
	}
	return &SMTPMailer{cfg: cfg, templates: templates}, nil
}

// Send renders the template and delivers it. Unknown template names fail.
func (m *SMTPMailer) Send(_ context.Context, to, tmpl string, data map[string]any) error {
	t, ok := m.templates[tmpl]
	if !ok {
		return fmt.Errorf("unknown mail template: %s", tmpl)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render template %s: %w", tmpl, err)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		m.cfg.From, to, subjects[tmpl], body.String())

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

// LogMailer writes mail to the log instead of delivering it. Used when no
// SMTP host is configured, typically in development.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that logs instead of sending.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, to, tmpl string, data map[string]any) error {
	m.logger.InfoContext(ctx, "mail suppressed (no SMTP host configured)",
		slog.String("to", to),
		slog.String("template", tmpl),
	)
	return nil
}

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

package mailer

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefit/pulsefit/internal/config"
)

func TestNewSMTPMailer_ParsesAllTemplates(t *testing.T) {
	m, err := NewSMTPMailer(config.MailConfig{})
	require.NoError(t, err)

	for name := range bodies {
		assert.Contains(t, m.templates, name)
		assert.Contains(t, subjects, name, "every template needs a subject line")
	}
}

func TestSMTPMailer_Send_UnknownTemplate(t *testing.T) {
	m, err := NewSMTPMailer(config.MailConfig{})
	require.NoError(t, err)

	err = m.Send(context.Background(), "user@example.com", "no-such-template", nil)
	assert.ErrorContains(t, err, "unknown mail template")
}

func TestResetCodeTemplate_RendersCode(t *testing.T) {
	m, err := NewSMTPMailer(config.MailConfig{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.templates[TemplateResetCode].Execute(&buf, map[string]any{
		"Name": "Trainee",
		"Code": "123456",
	}))

	assert.Contains(t, buf.String(), "123456")
	assert.Contains(t, buf.String(), "Trainee")
}

func TestLogMailer_Send(t *testing.T) {
	m := NewLogMailer(slog.Default())

	err := m.Send(context.Background(), "user@example.com", TemplateResetCode, map[string]any{"Code": "123456"})
	assert.NoError(t, err)
}

package gateway

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/mail-sentinel/internal/core"
)

func newTestGateway() *SMTPGateway {
	return NewSMTPGateway(
		nil,
		nil,
		zap.NewNop(),
		"127.0.0.1:10025",
		"X-Sentinel-Action",
		"X-Sentinel-Confidence",
		"X-Sentinel-Rules",
		"",
		"127.0.0.1",
		10026,
		false,
	)
}

func TestStampHeaders(t *testing.T) {
	gateway := newTestGateway()

	raw := []byte("Subject: hello\r\n\r\nbody\r\n")
	decision := core.DecisionResult{
		Action:         core.ActionEscalateHuman,
		Confidence:     7.5,
		TriggeredRules: []string{"mna_threshold", "legal_threshold"},
	}

	stamped := string(gateway.stampHeaders(raw, decision))

	assert.True(t, strings.HasPrefix(stamped, "X-Sentinel-Action: ESCALATE_HUMAN\r\n"))
	assert.Contains(t, stamped, "X-Sentinel-Confidence: 7.50\r\n")
	assert.Contains(t, stamped, "X-Sentinel-Rules: mna_threshold, legal_threshold\r\n")
	assert.True(t, strings.HasSuffix(stamped, string(raw)))
}

func TestStampHeadersOmitsEmptyRules(t *testing.T) {
	gateway := newTestGateway()

	stamped := string(gateway.stampHeaders([]byte("body"), core.DecisionResult{
		Action: core.ActionAutoReply,
	}))

	assert.Contains(t, stamped, "X-Sentinel-Action: AUTO_REPLY\r\n")
	assert.NotContains(t, stamped, "X-Sentinel-Rules")
}

func TestExtractTextFromPlainMessage(t *testing.T) {
	raw := "From: alice@example.com\r\n" +
		"Subject: hello\r\n" +
		"\r\n" +
		"plain body text\r\n"

	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)

	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "plain body text\r\n", text)
}

func TestExtractTextFromMultipartMessage(t *testing.T) {
	raw := "From: alice@example.com\r\n" +
		"Subject: hello\r\n" +
		"Content-Type: multipart/alternative; boundary=BOUNDARY\r\n" +
		"\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"the plain part\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>the html part</p>\r\n" +
		"--BOUNDARY--\r\n"

	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)

	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "the plain part")
	assert.NotContains(t, text, "html part")
}

func TestExtractTextFromMultipartWithoutTextPlain(t *testing.T) {
	raw := "From: alice@example.com\r\n" +
		"Content-Type: multipart/mixed; boundary=BOUNDARY\r\n" +
		"\r\n" +
		"--BOUNDARY\r\n" +
		"Content-Type: application/octet-stream\r\n" +
		"\r\n" +
		"binary\r\n" +
		"--BOUNDARY--\r\n"

	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)

	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "No text content")
}

// internal/mailer/message.go

// Package mailer delivers finished reports by email.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"healthreport-service/internal/common/errors"
	"healthreport-service/internal/common/validation"
)

// Message is one outbound report email with an optional PDF attachment.
type Message struct {
	From           string
	To             string
	Subject        string
	HTMLBody       string
	Attachment     []byte
	AttachmentName string
}

// Sender delivers a message. Implementations wrap a real provider; tests
// substitute fakes.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Validate checks the addresses before any provider call.
func (m *Message) Validate() error {
	if !validation.ValidateEmail(m.From) {
		return errors.NewConfigurationError(fmt.Sprintf("invalid sender address: %s", m.From))
	}
	if !validation.ValidateEmail(m.To) {
		return errors.NewRecipientMissingError(fmt.Sprintf("invalid recipient address: %s", m.To))
	}
	return nil
}

const mimeBoundary = "report-mail-boundary-7f3a9c"

// BuildRawMessage assembles the RFC 5322 MIME message. SES raw sending is the
// only way to attach files, so the multipart body is built by hand. Line
// endings must be CRLF throughout.
func BuildRawMessage(msg *Message) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", msg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=\"%s\"\r\n", mimeBoundary)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("Content-Transfer-Encoding: 7bit\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTMLBody)
	buf.WriteString("\r\n")

	if len(msg.Attachment) > 0 {
		name := msg.AttachmentName
		if name == "" {
			name = "report.pdf"
		}
		fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
		fmt.Fprintf(&buf, "Content-Type: application/pdf; name=\"%s\"\r\n", name)
		buf.WriteString("Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=\"%s\"\r\n", name)
		buf.WriteString("\r\n")
		writeBase64Wrapped(&buf, msg.Attachment)
		buf.WriteString("\r\n")
	}

	fmt.Fprintf(&buf, "--%s--\r\n", mimeBoundary)
	return buf.Bytes()
}

// writeBase64Wrapped encodes data at 76 characters per line per RFC 2045.
func writeBase64Wrapped(buf *bytes.Buffer, data []byte) {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	buf.WriteString(encoded)
}

// DefaultHTMLBody renders the standard delivery body.
func DefaultHTMLBody(subject string, overallScore float64) string {
	return fmt.Sprintf(
		"<html><body>"+
			"<h2>Your Health Assessment Report</h2>"+
			"<p>Hello %s,</p>"+
			"<p>Your assessment has been processed. Your overall score is <strong>%.1f / 100</strong>.</p>"+
			"<p>The full report is attached as a PDF.</p>"+
			"</body></html>",
		subject, overallScore)
}

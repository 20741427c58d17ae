package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/config"
)

const (
	attachmentMime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	sendAttempts   = 3
	sendRetryDelay = 2 * time.Second
)

// SMTPSender sends mail through a plain-auth SMTP relay.
type SMTPSender struct {
	cfg   config.SMTPConfig
	delay time.Duration
	send  func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender constructs a sender from SMTP config. Host must be set.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		cfg.From = cfg.Username
	}
	return &SMTPSender{cfg: cfg, delay: sendRetryDelay, send: smtp.SendMail}, nil
}

// Send delivers the message, retrying transient failures.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient is required")
	}

	payload := buildMIME(s.cfg.From, msg)
	addr := s.cfg.Host + ":" + s.cfg.Port

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	return retry.Do(
		func() error {
			return s.send(addr, auth, s.cfg.From, []string{msg.To}, payload)
		},
		retry.Context(ctx),
		retry.Attempts(sendAttempts),
		retry.Delay(s.delay),
		retry.LastErrorOnly(true),
	)
}

// buildMIME assembles a multipart/mixed message with the attachment
// base64-encoded in 76-column lines.
func buildMIME(from string, msg Message) []byte {
	var buf bytes.Buffer
	boundary := "resume-attachment-boundary"

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", boundary)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.Body)
	buf.WriteString("\r\n")

	if len(msg.Attachment) > 0 {
		name := msg.AttachmentName
		if name == "" {
			name = "resume.docx"
		}
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Type: %s; name=%q\r\n", attachmentMime, name)
		buf.WriteString("Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n", name)
		buf.WriteString("\r\n")
		writeBase64Wrapped(&buf, msg.Attachment)
	}

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes()
}

func writeBase64Wrapped(buf *bytes.Buffer, data []byte) {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		buf.WriteString(encoded[:76])
		buf.WriteString("\r\n")
		encoded = encoded[76:]
	}
	if encoded != "" {
		buf.WriteString(encoded)
		buf.WriteString("\r\n")
	}
}

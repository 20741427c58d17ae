package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/ryanmontogomory-hue/Injector-sub000/internal/shared/config"
)

func testSender(t *testing.T, send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error) *SMTPSender {
	t.Helper()
	s, err := NewSMTPSender(config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     "587",
		Username: "mailer@example.com",
		Password: "secret",
		From:     "mailer@example.com",
	})
	if err != nil {
		t.Fatalf("new sender: %v", err)
	}
	s.send = send
	s.delay = time.Millisecond
	return s
}

func TestSendBuildsMultipartMessage(t *testing.T) {
	var captured []byte
	var capturedTo []string
	s := testSender(t, func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		captured = msg
		capturedTo = to
		return nil
	})

	err := s.Send(context.Background(), Message{
		To:             "dest@example.com",
		Subject:        "Your customized resume",
		Body:           "Attached is your updated resume.",
		Attachment:     []byte("PK fake docx bytes"),
		AttachmentName: "resume.customized.docx",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(capturedTo) != 1 || capturedTo[0] != "dest@example.com" {
		t.Fatalf("unexpected recipients: %v", capturedTo)
	}
	text := string(captured)
	for _, want := range []string{
		"To: dest@example.com",
		"Content-Type: multipart/mixed",
		"Content-Transfer-Encoding: base64",
		`filename="resume.customized.docx"`,
		"Attached is your updated resume.",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("message missing %q\n%s", want, text)
		}
	}
}

func TestSendRetriesTransientFailures(t *testing.T) {
	attempts := 0
	s := testSender(t, func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})

	if err := s.Send(context.Background(), Message{To: "dest@example.com"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	s := testSender(t, func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		t.Fatal("send should not be called")
		return nil
	})

	if err := s.Send(context.Background(), Message{}); err == nil {
		t.Fatal("expected error for missing recipient")
	}
}

func TestNewSMTPSenderRequiresHost(t *testing.T) {
	if _, err := NewSMTPSender(config.SMTPConfig{}); err == nil {
		t.Fatal("expected error for missing host")
	}
}

// Package email delivers customized resumes to a recipient mailbox.
package email

import "context"

// Message is one outbound mail with an optional binary attachment.
type Message struct {
	To             string
	Subject        string
	Body           string
	Attachment     []byte
	AttachmentName string
}

// Sender delivers messages. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

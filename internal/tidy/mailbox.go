package tidy

import (
	"context"
	"errors"
)

// Well-known system label ids.
const (
	labelIDInbox = "INBOX"
	labelIDTrash = "TRASH"
)

// ErrLabelExists signals that a label create call failed because the label
// already exists on the remote side (a race or a name-normalization
// difference). The label directory reacts by re-listing.
var ErrLabelExists = errors.New("label already exists")

// Mailbox is the capability interface over the remote mailbox service.
// It covers exactly the operations the engine needs; the real Gmail-backed
// implementation lives in internal/gmail, tests use an in-memory fake.
type Mailbox interface {
	// ListMessages returns one page of message refs matching query,
	// in the service's native order. An empty page with no next token
	// means the listing is exhausted.
	ListMessages(ctx context.Context, query, pageToken string, pageSize int64) (*MessagePage, error)

	// BatchModify adds and removes labels on all given messages in one call.
	BatchModify(ctx context.Context, ids, addLabelIDs, removeLabelIDs []string) error

	// BatchDelete permanently deletes all given messages in one call.
	BatchDelete(ctx context.Context, ids []string) error

	// ListLabels returns all labels of the mailbox.
	ListLabels(ctx context.Context) ([]Label, error)

	// CreateLabel creates a new user label. Returns an error wrapping
	// ErrLabelExists on a conflict.
	CreateLabel(ctx context.Context, name string) (Label, error)

	// GetMessageHeaders fetches the named headers of one message.
	// Header names are matched case-insensitively; missing headers are
	// simply absent from the result.
	GetMessageHeaders(ctx context.Context, id string, names []string) (map[string]string, error)
}

// Attachment describes one attachment found in a message.
type Attachment struct {
	MessageID    string
	AttachmentID string
	Filename     string
	MimeType     string
	Size         int64

	// Data holds inline base64url content for small parts that carry their
	// bytes directly instead of an attachment id.
	Data string
}

// AttachmentSource is the optional capability for scanning and fetching
// attachments, used by the download action.
type AttachmentSource interface {
	ListAttachments(ctx context.Context, messageID string) ([]Attachment, error)
	GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error)
}

package tidy

// ActionKind identifies a bulk mutation applied to a set of messages.
type ActionKind string

const (
	// ActionDelete permanently deletes messages. Not recoverable.
	ActionDelete ActionKind = "delete"
	// ActionTrash moves messages to trash (recoverable for 30 days).
	ActionTrash ActionKind = "trash"
	// ActionLabel applies a label and optionally archives.
	ActionLabel ActionKind = "label"
)

// Action describes one bulk mutation for the executor.
type Action struct {
	Kind ActionKind

	// LabelID is the resolved label id. Required for ActionLabel.
	LabelID string

	// Archive removes the INBOX label alongside adding LabelID.
	Archive bool
}

// MessageRef identifies a message. The id is opaque and never mutated.
type MessageRef struct {
	ID string
}

// MessagePage is one page of a message listing.
type MessagePage struct {
	Refs          []MessageRef
	NextPageToken string
}

// Label is a mailbox label with its durable id and display name.
// Name comparison is always case-insensitive; the id is the handle used for
// mutations.
type Label struct {
	ID     string
	Name   string
	Total  int64
	Unread int64
}

// MessageSummary holds the preview fields of a message, truncated the same
// way the interactive output expects them. Derived and read-only; never
// persisted.
type MessageSummary struct {
	ID      string
	Subject string // ≤60 chars
	From    string // ≤40 chars
	Date    string // ≤25 chars
}

// Preview field limits.
const (
	subjectPreviewLen = 60
	fromPreviewLen    = 40
	datePreviewLen    = 25
)

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func orElse(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

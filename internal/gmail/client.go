package gmail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/inboxtidy/internal/google"
	"github.com/teemow/inboxtidy/internal/instrumentation"
	"github.com/teemow/inboxtidy/internal/tidy"
)

// Client wraps the Gmail Users service. It implements tidy.Mailbox and
// tidy.AttachmentSource.
type Client struct {
	svc     *gmail.UsersService
	metrics *instrumentation.Metrics
}

var (
	_ tidy.Mailbox          = (*Client)(nil)
	_ tidy.AttachmentSource = (*Client)(nil)
)

// NewClient creates a Gmail client authenticated with the cached OAuth
// token described by cfg.
func NewClient(ctx context.Context, cfg google.Config, metrics *instrumentation.Metrics) (*Client, error) {
	httpClient, err := google.GetHTTPClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Client{svc: svc.Users, metrics: metrics}, nil
}

func (c *Client) record(ctx context.Context, op string, start time.Time, err error) {
	c.metrics.RecordRemoteCall(ctx, op, float64(time.Since(start))/float64(time.Millisecond), err)
}

// ListMessages returns one page of message refs matching the query.
func (c *Client) ListMessages(ctx context.Context, query, pageToken string, pageSize int64) (*tidy.MessagePage, error) {
	start := time.Now()

	req := c.svc.Messages.List("me").Q(query).MaxResults(pageSize).Context(ctx)
	if pageToken != "" {
		req = req.PageToken(pageToken)
	}
	res, err := req.Do()
	c.record(ctx, "list_messages", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	page := &tidy.MessagePage{NextPageToken: res.NextPageToken}
	for _, m := range res.Messages {
		page.Refs = append(page.Refs, tidy.MessageRef{ID: m.Id})
	}
	return page, nil
}

// BatchModify adds and removes labels on all given messages in one call.
func (c *Client) BatchModify(ctx context.Context, ids, addLabelIDs, removeLabelIDs []string) error {
	start := time.Now()
	err := c.svc.Messages.BatchModify("me", &gmail.BatchModifyMessagesRequest{
		Ids:            ids,
		AddLabelIds:    addLabelIDs,
		RemoveLabelIds: removeLabelIDs,
	}).Context(ctx).Do()
	c.record(ctx, "batch_modify", start, err)
	if err != nil {
		return fmt.Errorf("failed to modify %d messages: %w", len(ids), err)
	}
	return nil
}

// BatchDelete permanently deletes all given messages in one call.
func (c *Client) BatchDelete(ctx context.Context, ids []string) error {
	start := time.Now()
	err := c.svc.Messages.BatchDelete("me", &gmail.BatchDeleteMessagesRequest{
		Ids: ids,
	}).Context(ctx).Do()
	c.record(ctx, "batch_delete", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete %d messages: %w", len(ids), err)
	}
	return nil
}

// ListLabels returns all labels with message counts. The list endpoint does
// not populate counts, so each label is fetched individually; a failed
// detail fetch degrades to the bare list entry.
func (c *Client) ListLabels(ctx context.Context) ([]tidy.Label, error) {
	start := time.Now()
	res, err := c.svc.Labels.List("me").Context(ctx).Do()
	c.record(ctx, "list_labels", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	labels := make([]tidy.Label, 0, len(res.Labels))
	for _, l := range res.Labels {
		label := tidy.Label{ID: l.Id, Name: l.Name, Total: l.MessagesTotal, Unread: l.MessagesUnread}
		if detail, err := c.svc.Labels.Get("me", l.Id).Context(ctx).Do(); err == nil {
			label.Total = detail.MessagesTotal
			label.Unread = detail.MessagesUnread
		}
		labels = append(labels, label)
	}
	return labels, nil
}

// CreateLabel creates a new user label. A remote conflict (the label exists
// under a normalized name) is reported as tidy.ErrLabelExists so the caller
// can re-list.
func (c *Client) CreateLabel(ctx context.Context, name string) (tidy.Label, error) {
	start := time.Now()
	created, err := c.svc.Labels.Create("me", &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	c.record(ctx, "create_label", start, err)
	if err != nil {
		if isConflict(err) {
			return tidy.Label{}, fmt.Errorf("create label %q: %w", name, tidy.ErrLabelExists)
		}
		return tidy.Label{}, fmt.Errorf("failed to create label %q: %w", name, err)
	}
	return tidy.Label{ID: created.Id, Name: created.Name}, nil
}

func isConflict(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 409
	}
	return false
}

// GetMessageHeaders fetches the named headers of one message using the
// metadata format, so bodies are never transferred. Header names are
// matched case-insensitively; the first occurrence wins.
func (c *Client) GetMessageHeaders(ctx context.Context, id string, names []string) (map[string]string, error) {
	start := time.Now()
	req := c.svc.Messages.Get("me", id).Format("metadata").Context(ctx)
	if len(names) > 0 {
		req = req.MetadataHeaders(names...)
	}
	msg, err := req.Do()
	c.record(ctx, "get_message_headers", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	wanted := make(map[string]string, len(names))
	for _, n := range names {
		wanted[strings.ToLower(n)] = n
	}

	headers := make(map[string]string)
	if msg.Payload == nil {
		return headers, nil
	}
	for _, h := range msg.Payload.Headers {
		canonical, ok := wanted[strings.ToLower(h.Name)]
		if !ok {
			continue
		}
		if _, exists := headers[canonical]; !exists {
			headers[canonical] = h.Value
		}
	}
	return headers, nil
}

// ListAttachments extracts all attachments from a message, walking every
// MIME part.
func (c *Client) ListAttachments(ctx context.Context, messageID string) ([]tidy.Attachment, error) {
	start := time.Now()
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Context(ctx).Do()
	c.record(ctx, "get_message", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}

	var attachments []tidy.Attachment
	walkParts(msg.Payload, func(part *gmail.MessagePart) {
		if part.Filename == "" || part.Body == nil {
			return
		}
		attachments = append(attachments, tidy.Attachment{
			MessageID:    messageID,
			AttachmentID: part.Body.AttachmentId,
			Filename:     part.Filename,
			MimeType:     part.MimeType,
			Size:         part.Body.Size,
			Data:         part.Body.Data,
		})
	})
	return attachments, nil
}

// walkParts visits part and all nested parts depth-first.
func walkParts(part *gmail.MessagePart, fn func(*gmail.MessagePart)) {
	if part == nil {
		return
	}
	fn(part)
	for _, p := range part.Parts {
		walkParts(p, fn)
	}
}

// GetAttachment retrieves and decodes the content of an attachment.
func (c *Client) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	if attachmentID == "" {
		return nil, fmt.Errorf("attachmentID is required")
	}

	start := time.Now()
	attachment, err := c.svc.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
	c.record(ctx, "get_attachment", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment %s: %w", attachmentID, err)
	}

	data, err := decodeBody(attachment.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment data: %w", err)
	}
	return data, nil
}

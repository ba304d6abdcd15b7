package tidy

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[/\\:*?"<>|]`)

// sanitizeFilename replaces characters unsafe in filenames with underscores.
func sanitizeFilename(name string) string {
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// uniquePath returns a path in dir for filename, appending _1, _2 etc. to
// avoid overwriting existing files.
func uniquePath(dir, filename string) string {
	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	for counter := 1; ; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// formatSize renders a byte count as a human-readable string.
func formatSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}

// Downloader scans messages for attachments and writes them to disk.
type Downloader struct {
	source AttachmentSource
	out    io.Writer
	logger *slog.Logger
}

// NewDownloader creates a downloader over the given attachment source.
func NewDownloader(source AttachmentSource, out io.Writer, logger *slog.Logger) *Downloader {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{source: source, out: out, logger: logger}
}

// Download scans the given messages for attachments and downloads them to
// outputDir. In dry-run mode it only lists what would be downloaded.
// Per-attachment failures are reported and skipped. Returns the number of
// attachments written.
func (d *Downloader) Download(ctx context.Context, refs []MessageRef, outputDir string, dryRun bool) (int, error) {
	fmt.Fprintf(d.out, "\nScanning %d messages for attachments...\n", len(refs))

	var all []Attachment
	for i, ref := range refs {
		atts, err := d.source.ListAttachments(ctx, ref.ID)
		if err != nil {
			fmt.Fprintf(d.out, "  Error fetching message %s: %v\n", ref.ID, err)
			continue
		}
		all = append(all, atts...)
		if (i+1)%25 == 0 {
			fmt.Fprintf(d.out, "  Scanned %d/%d messages, found %d attachments...\n",
				i+1, len(refs), len(all))
		}
	}

	if len(all) == 0 {
		fmt.Fprintln(d.out, "\nNo attachments found.")
		return 0, nil
	}

	var totalSize int64
	for _, a := range all {
		totalSize += a.Size
	}
	fmt.Fprintf(d.out, "\nFound %d attachments (%s) across %d messages.\n",
		len(all), formatSize(totalSize), len(refs))

	if dryRun {
		fmt.Fprintf(d.out, "\n[DRY RUN] Would download %d attachments to %s\n", len(all), outputDir)
		limit := len(all)
		if limit > 20 {
			limit = 20
		}
		for _, a := range all[:limit] {
			fmt.Fprintf(d.out, "  %s (%s)\n", sanitizeFilename(a.Filename), formatSize(a.Size))
		}
		if len(all) > 20 {
			fmt.Fprintf(d.out, "  ... and %d more\n", len(all)-20)
		}
		return 0, nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	fmt.Fprintf(d.out, "\nDownloading to %s...\n", outputDir)
	downloaded := 0

	for _, a := range all {
		data, err := d.attachmentData(ctx, a)
		if err != nil {
			fmt.Fprintf(d.out, "  Error downloading %s: %v\n", a.Filename, err)
			continue
		}
		if data == nil {
			fmt.Fprintf(d.out, "  Skipping %s: no data available\n", a.Filename)
			continue
		}

		path := uniquePath(outputDir, sanitizeFilename(a.Filename))
		if err := os.WriteFile(path, data, 0644); err != nil {
			fmt.Fprintf(d.out, "  Error writing %s: %v\n", path, err)
			continue
		}
		downloaded++
		if downloaded%10 == 0 {
			fmt.Fprintf(d.out, "  Downloaded %d/%d attachments...\n", downloaded, len(all))
		}
	}

	fmt.Fprintf(d.out, "\nDone! Downloaded %d attachments to %s\n", downloaded, outputDir)
	return downloaded, nil
}

func (d *Downloader) attachmentData(ctx context.Context, a Attachment) ([]byte, error) {
	if a.AttachmentID != "" {
		return d.source.GetAttachment(ctx, a.MessageID, a.AttachmentID)
	}
	if a.Data != "" {
		data, err := base64.URLEncoding.DecodeString(a.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode inline attachment data: %w", err)
		}
		return data, nil
	}
	return nil, nil
}

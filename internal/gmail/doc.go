// Package gmail provides the Gmail-backed implementation of the tidy
// engine's mailbox interface.
//
// It wraps the Gmail Users service and exposes exactly the operations the
// engine consumes: paged message listing, bulk modify/delete, label
// list/create, metadata header fetch, and attachment access. All calls take
// a context and are instrumented.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := gmail.NewClient(ctx, google.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page, err := client.ListMessages(ctx, "in:inbox", "", 100)
package gmail

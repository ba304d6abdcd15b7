// Package cmd implements the command-line interface for inboxtidy.
//
// This package provides the following commands:
//   - tidy: Apply the filing rules from the rule file to the inbox
//   - search: Act on messages matching a Gmail search query
//   - labels: List labels, or preview the messages under one
//   - auth: Authorize access to the Gmail account
//   - version: Display version information
//
// The tidy command is the default command when no subcommand is specified.
package cmd

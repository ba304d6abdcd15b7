// Package tidy implements the inbox tidying rule engine.
//
// The engine loads declarative filing rules, searches the mailbox for
// matching messages, previews them, and applies label/archive/trash/delete
// actions in batches. After all rules run it can scan the remaining inbox,
// group un-ruled messages by sender, and interactively learn new rules that
// are written back to the rule file.
//
// All remote access goes through the Mailbox interface so the engine can be
// tested against an in-memory fake. The real implementation lives in
// internal/gmail.
package tidy

// Package protocol is the JSON-over-HTTP interface to a prompt store: the server that exposes
// it and the client the CLI uses to talk to a remote one.
package protocol

import (
	"github.com/codimo/promptdiff/internal/diff"
)

// PromptResponse is returned by GET /get-prompt.
type PromptResponse struct {
	Prompt  string `json:"prompt"`
	Version int    `json:"version"`
}

// SetPromptRequest is the body of POST /prompt.
type SetPromptRequest struct {
	Prompt   string            `json:"prompt"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PromptDiffResponse is returned by GET /prompt-diff. Rows is only set in split mode.
type PromptDiffResponse struct {
	OldPrompt string      `json:"old_prompt"`
	NewPrompt string      `json:"new_prompt"`
	Version   int         `json:"version"`
	Diff      string      `json:"diff"`
	Hunks     []diff.Hunk `json:"hunks"`
	Stats     diff.Stats  `json:"stats"`
	Rows      []diff.Row  `json:"rows,omitempty"`
}

// DiffRequest is the body of POST /diff.
type DiffRequest struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// DiffResponse is returned by POST /diff.
type DiffResponse struct {
	Hunks []diff.Hunk `json:"hunks"`
	Stats diff.Stats  `json:"stats"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Diff modes accepted by GET /prompt-diff.
const (
	ModeUnified = "unified"
	ModeSplit   = "split"
)

package domain

import "github.com/google/uuid"

// Command is a natural-language instruction submitted to a session.
// Each command is dequeued by the session worker exactly once and
// resolved to exactly one Update.
type Command struct {
	// ID is unique within the session.
	ID string `json:"command_id"`

	// Text is the raw command text.
	Text string `json:"command"`
}

// NewCommand creates a command with a fresh id.
func NewCommand(text string) Command {
	return Command{
		ID:   uuid.NewString(),
		Text: text,
	}
}

// Update is the result of a resolved command, queued for retrieval by
// a polling client.
type Update struct {
	// CommandID links the update to the command that produced it.
	CommandID string `json:"command_id"`

	// Response is the user-visible response text. Resolver failures
	// surface here as error text, never as a queue failure.
	Response string `json:"response"`

	// Failed marks updates produced from a resolver failure.
	Failed bool `json:"failed,omitempty"`
}

package commands

import (
	"context"

	"tornbot/pkg/torn"
)

// Request is one command invocation, independent of the chat platform.
type Request struct {
	Command   string
	UserID    string
	GuildID   string // empty in direct messages
	ChannelID string
	Arg       string // the single optional string argument
}

// FollowUp asks the platform adapter to attach an interaction step to the reply.
type FollowUp int

const (
	FollowUpNone FollowUp = iota
	FollowUpAcceptPrompt // an "accept" affordance for the terms
	FollowUpKeyPrompt    // an input asking for the API key
)

type Reply struct {
	Content  string
	Private  bool
	FollowUp FollowUp
}

// CredentialStore persists API keys and ToS acceptance.
type CredentialStore interface {
	Key(ctx context.Context, userID string) (string, bool, error)
	SetKey(ctx context.Context, userID, key string) error
	RemoveKey(ctx context.Context, userID string) (bool, error)
	HasAcceptedTOS(ctx context.Context, userID string) (bool, error)
	AcceptTOS(ctx context.Context, userID string) (bool, error)
}

// GameAPI issues one request against the Torn API.
type GameAPI interface {
	Fetch(ctx context.Context, ep torn.Endpoint, key string) ([]byte, error)
}

// Tracker switches the stock broadcast on and off per guild.
type Tracker interface {
	Subscribe(guildID, channelID string) bool
	Unsubscribe(guildID string) bool
}

type Recorder interface {
	ObserveCommand(command, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCommand(string, string) {}

// command outcomes reported to the Recorder
const (
	OutcomeOK      = "ok"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
	OutcomeUnknown = "unknown"
)

package memorystore

// Subscription maps a guild to the channel receiving its stock messages.
type Subscription struct {
	GuildID   string
	ChannelID string
}

// Handle is the message rendered for one (guild, instrument) pair.
type Handle struct {
	MessageID string
	Content   string // last rendered text
}

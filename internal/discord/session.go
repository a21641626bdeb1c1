package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tornbot/internal/torn/commands"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Dispatcher answers platform independent command requests.
type Dispatcher interface {
	Dispatch(ctx context.Context, req commands.Request) commands.Reply
	SetAppID(id string)
}

type Config struct {
	Token          string
	GuildID        string // register commands to this guild only; empty registers globally
	CommandTimeout time.Duration
}

// interactionAPI is the part of *discordgo.Session used to answer interactions.
type interactionAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot connects the dispatcher to the Discord gateway.
type Bot struct {
	cfg        Config
	session    *discordgo.Session
	dispatcher Dispatcher
	logger     *zap.Logger
	deferred   map[string]bool

	mu      sync.Mutex
	baseCtx context.Context
}

func New(cfg Config, dispatcher Dispatcher, logger *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = 15 * time.Second
	}

	deferred := make(map[string]bool)
	for _, def := range commands.Definitions() {
		if def.Deferred {
			deferred[def.Name] = true
		}
	}

	b := &Bot{
		cfg:        cfg,
		session:    session,
		dispatcher: dispatcher,
		logger:     logger,
		deferred:   deferred,
		baseCtx:    context.Background(),
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	return b, nil
}

// SetDispatcher replaces the dispatcher. Call before Open.
func (b *Bot) SetDispatcher(d Dispatcher) {
	b.dispatcher = d
}

// Session exposes the underlying session, e.g. for a Publisher.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Open connects to the gateway. Command handlers derive their context from ctx.
func (b *Bot) Open(ctx context.Context) error {
	b.mu.Lock()
	b.baseCtx = ctx
	b.mu.Unlock()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	appID := s.State.User.ID
	if r.Application != nil && r.Application.ID != "" {
		appID = r.Application.ID
	}
	b.dispatcher.SetAppID(appID)

	b.logger.Info("bot is online",
		zap.String("user", r.User.String()),
		zap.Int("guilds", len(r.Guilds)),
	)

	cmds := ApplicationCommands(commands.Definitions())
	if _, err := s.ApplicationCommandBulkOverwrite(appID, b.cfg.GuildID, cmds); err != nil {
		b.logger.Error("failed to register slash commands", zap.Error(err))
		return
	}
	b.logger.Info("slash commands registered", zap.Int("count", len(cmds)), zap.String("guild", b.cfg.GuildID))
}

func (b *Bot) onInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	b.handleInteraction(s, ic.Interaction)
}

// handleInteraction answers API backed commands with a deferred acknowledgement followed
// by an edit, and everything else with a single response.
func (b *Bot) handleInteraction(api interactionAPI, i *discordgo.Interaction) {
	if IsKeyPrompt(i) {
		if err := api.InteractionRespond(i, KeyModal()); err != nil {
			b.logger.Warn("failed to open key modal", zap.Error(err))
		}
		return
	}

	req, ok := RequestFromInteraction(i)
	if !ok {
		return
	}

	b.mu.Lock()
	base := b.baseCtx
	b.mu.Unlock()
	ctx, cancel := context.WithTimeout(base, b.cfg.CommandTimeout)
	defer cancel()

	log := b.logger.With(zap.String("command", req.Command), zap.String("user", req.UserID), zap.String("guild", req.GuildID))

	if b.deferred[req.Command] && i.Type == discordgo.InteractionApplicationCommand {
		if err := api.InteractionRespond(i, DeferredResponse()); err != nil {
			log.Warn("failed to acknowledge interaction", zap.Error(err))
			return
		}
		reply := b.dispatcher.Dispatch(ctx, req)
		if _, err := api.InteractionResponseEdit(i, Edit(reply)); err != nil {
			log.Warn("failed to edit interaction response", zap.Error(err))
		}
		return
	}

	reply := b.dispatcher.Dispatch(ctx, req)
	if err := api.InteractionRespond(i, Response(reply)); err != nil {
		log.Warn("failed to respond to interaction", zap.Error(err))
	}
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"rankwatch/internal/logger"
	"rankwatch/internal/store"
)

// commandTimeout bounds one slash command end to end. /analyze does a
// rank lookup, up to two page fetches and a generation call, so this
// stays generous.
const commandTimeout = 3 * time.Minute

// Service is the thin discordgo layer over the dispatcher: session
// lifecycle, slash command registration and event routing.
type Service struct {
	cfg        *store.Config
	dispatcher *Dispatcher
	session    *discordgo.Session
}

func NewService(cfg *store.Config, dispatcher *Dispatcher) (*Service, error) {
	token := os.Getenv("DISCORD_BOT_TOKEN")
	if token == "" {
		return nil, errors.New("DISCORD_BOT_TOKEN missing")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	s := &Service{cfg: cfg, dispatcher: dispatcher, session: session}
	session.AddHandler(s.onReady)
	session.AddHandler(s.onInteraction)
	session.AddHandler(s.onMessage)
	return s, nil
}

// Start opens the gateway connection and registers the slash commands.
func (s *Service) Start(ctx context.Context) error {
	if err := s.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	if err := s.registerCommands(ctx); err != nil {
		s.session.Close()
		return err
	}
	return nil
}

func (s *Service) Stop() error {
	return s.session.Close()
}

// Connected reports whether the gateway session is up.
func (s *Service) Connected() bool {
	return s.session != nil && s.session.DataReady
}

var slashCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "rank",
		Description: "Check the current search rank for a keyword",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "keyword",
				Description: "Keyword to check",
				Required:    true,
			},
		},
	},
	{
		Name:        "analyze",
		Description: "Run a competitor gap analysis for a keyword",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "keyword",
				Description: "Keyword to analyze",
				Required:    true,
			},
		},
	},
	{
		Name:        "status",
		Description: "Show bot status and tracked keywords",
	},
}

func (s *Service) registerCommands(ctx context.Context) error {
	appID := s.session.State.User.ID
	created, err := s.session.ApplicationCommandBulkOverwrite(appID, s.cfg.Discord.GuildID, slashCommands)
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	logger.Info(ctx, "Slash commands registered",
		"count", len(created),
		"guild_id", s.cfg.Discord.GuildID,
	)
	return nil
}

func (s *Service) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	logger.Info(context.Background(), "Bot logged in",
		"user", r.User.Username,
		"session_id", r.SessionID,
	)
}

func (s *Service) onInteraction(session *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()

	// Ack immediately. SERP lookups and generation take longer than the
	// three seconds Discord allows for the first response.
	if err := session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		logger.ErrorWithErr(context.Background(), "Failed to defer interaction", err, "command", data.Name)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		var reply *CommandReply
		switch data.Name {
		case "rank":
			reply = s.dispatcher.HandleRank(ctx, optionString(data, "keyword"))
		case "analyze":
			reply = s.dispatcher.HandleAnalyze(ctx, optionString(data, "keyword"))
		case "status":
			reply = s.dispatcher.HandleStatus(ctx)
		default:
			reply = &CommandReply{Body: "Unknown command.", Color: colorRed}
		}

		if _, err := session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{toEmbed(reply)},
		}); err != nil {
			logger.ErrorWithErr(ctx, "Failed to send follow-up", err, "command", data.Name)
		}
	}()
}

func (s *Service) onMessage(session *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if session.State.User == nil || !mentionsUser(m, session.State.User.ID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	content := stripMention(m.Content, session.State.User.ID)
	reply := s.dispatcher.HandleChat(ctx, content)

	if _, err := session.ChannelMessageSend(m.ChannelID, reply.Body); err != nil {
		logger.ErrorWithErr(ctx, "Failed to send chat reply", err, "channel_id", m.ChannelID)
	}
}

func optionString(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, opt := range data.Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func toEmbed(reply *CommandReply) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       reply.Title,
		Description: reply.Body,
		Color:       reply.Color,
	}
	for _, f := range reply.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return embed
}

func mentionsUser(m *discordgo.MessageCreate, userID string) bool {
	for _, u := range m.Mentions {
		if u.ID == userID {
			return true
		}
	}
	return false
}

func stripMention(content, userID string) string {
	content = strings.ReplaceAll(content, "<@"+userID+">", "")
	content = strings.ReplaceAll(content, "<@!"+userID+">", "")
	return strings.TrimSpace(content)
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
	"github.com/Duffman2k/duffvouchbot/internal/services"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/bwmarrin/discordgo"
)

const handlerTimeout = 30 * time.Second

type Bot struct {
	session     *discordgo.Session
	api         Session
	conf        *structures.Config
	submissions services.SubmissionServiceInterface
	approvals   services.ApprovalServiceInterface
	router      *Router
	logger      providers.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewBot(conf *structures.Config, session *discordgo.Session, submissions services.SubmissionServiceInterface, approvals services.ApprovalServiceInterface, logger providers.Logger) *Bot {
	b := newBot(conf, session, submissions, approvals, logger)
	b.session = session
	return b
}

func newBot(conf *structures.Config, api Session, submissions services.SubmissionServiceInterface, approvals services.ApprovalServiceInterface, logger providers.Logger) *Bot {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bot{
		api:         api,
		conf:        conf,
		submissions: submissions,
		approvals:   approvals,
		router:      NewRouter(),
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
	b.router.AddCommandHandler(commandStart, b.handleConversationCommand(models.EventStart))
	b.router.AddCommandHandler(commandCancel, b.handleConversationCommand(models.EventCancel))
	b.router.AddCommandHandler(commandPending, b.handlePending)
	b.router.AddComponentHandler(componentApprove, b.handleDecision(services.ActionApprove))
	b.router.AddComponentHandler(componentDeny, b.handleDecision(services.ActionDeny))
	return b
}

// Start opens the gateway and registers the slash commands.
func (b *Bot) Start() error {
	b.session.AddHandler(b.onInteractionCreate)
	b.session.AddHandler(b.onMessageCreate)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	appID := b.session.State.User.ID
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, "", conversationCommands); err != nil {
		return fmt.Errorf("register global commands: %w", err)
	}
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, b.conf.Bot.GuildID, moderationCommands); err != nil {
		return fmt.Errorf("register guild commands: %w", err)
	}
	b.logger.Infof(providers.TypeBot, "Bot is running as %s", b.session.State.User.Username)
	return nil
}

func (b *Bot) Close() error {
	b.cancel()
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}

func (b *Bot) handlerContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.ctx, handlerTimeout)
}

func (b *Bot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := b.handlerContext()
	defer cancel()
	if !b.router.Dispatch(ctx, i) {
		b.logger.Debugf(providers.TypeBot, "Unhandled interaction type %s", i.Type)
	}
}

// onMessageCreate feeds direct messages into the conversation.
func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID != "" {
		return
	}
	ctx, cancel := b.handlerContext()
	defer cancel()

	ev := messageEvent(m)
	if ev.Kind == models.EventImage && b.submissions.State(ev.UserID) == models.ConversationAwaitingImage {
		b.send(m.ChannelID, services.MsgImageReceived)
	}

	reply, err := b.submissions.Handle(ctx, ev)
	if err != nil {
		b.logger.Warnf(providers.TypeBot, "Conversation event %s from %s: %v", ev.Kind, ev.UserID, err)
	}
	if reply.Text != "" {
		b.send(m.ChannelID, reply.Text)
	}
}

func messageEvent(m *discordgo.MessageCreate) models.ConversationEvent {
	ev := models.ConversationEvent{
		UserID:      m.Author.ID,
		DisplayName: displayName(m.Author, m.Member),
		Text:        strings.TrimSpace(m.Content),
	}
	if url := imageAttachment(m.Attachments); url != "" {
		ev.Kind = models.EventImage
		ev.ImageURL = url
		return ev
	}
	switch strings.ToLower(ev.Text) {
	case "/" + commandStart, "!" + commandStart:
		ev.Kind = models.EventStart
	case "/" + commandCancel, "!" + commandCancel:
		ev.Kind = models.EventCancel
	default:
		ev.Kind = models.EventText
	}
	return ev
}

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

func imageAttachment(attachments []*discordgo.MessageAttachment) string {
	for _, a := range attachments {
		if a == nil {
			continue
		}
		if strings.HasPrefix(a.ContentType, "image/") || imageExtensions[strings.ToLower(path.Ext(a.Filename))] {
			return a.URL
		}
	}
	return ""
}

func (b *Bot) send(channelID, text string) {
	if _, err := b.api.ChannelMessageSend(channelID, text, discordgo.WithContext(b.ctx)); err != nil {
		b.logger.Errorf(providers.TypeBot, "Could not send message to %s: %v", channelID, err)
	}
}

func (b *Bot) respond(i *discordgo.InteractionCreate, text string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: text}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := b.api.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.logger.Errorf(providers.TypeBot, "Could not respond to interaction: %v", err)
	}
}

func (b *Bot) handleConversationCommand(kind models.EventKind) interactionHandler {
	return func(ctx context.Context, i *discordgo.InteractionCreate) {
		u, member := interactionUser(i.Interaction)
		if u == nil {
			return
		}
		reply, err := b.submissions.Handle(ctx, models.ConversationEvent{
			Kind:        kind,
			UserID:      u.ID,
			DisplayName: displayName(u, member),
		})
		if err != nil {
			b.logger.Warnf(providers.TypeBot, "Conversation command %s from %s: %v", kind, u.ID, err)
		}
		b.respond(i, reply.Text, i.GuildID != "")
	}
}

func (b *Bot) handlePending(ctx context.Context, i *discordgo.InteractionCreate) {
	u, _ := interactionUser(i.Interaction)
	if u == nil || !b.approvals.IsModerator(u.ID) {
		b.respond(i, services.MsgNotModerator, true)
		return
	}

	pending := b.approvals.ListPending()
	if len(pending) == 0 {
		b.respond(i, services.MsgNoPending, true)
		return
	}
	b.respond(i, fmt.Sprintf("%d pending vouches:", len(pending)), true)

	for _, sub := range pending {
		_, err := b.api.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content:    services.PendingCaption(sub),
			Files:      []*discordgo.File{jpegFile(sub.Image.NewReader())},
			Components: decisionButtons(sub.SubmitterID),
			Flags:      discordgo.MessageFlagsEphemeral,
		}, discordgo.WithContext(ctx))
		if err != nil {
			b.logger.Errorf(providers.TypeBot, "Could not show pending submission %s: %v", sub.ID, err)
		}
	}
}

func (b *Bot) handleDecision(action services.Action) interactionHandler {
	return func(ctx context.Context, i *discordgo.InteractionCreate) {
		u, _ := interactionUser(i.Interaction)
		if u == nil || !b.approvals.IsModerator(u.ID) {
			b.respond(i, services.MsgNotModerator, true)
			return
		}

		err := b.api.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
		if err != nil {
			b.logger.Errorf(providers.TypeBot, "Could not acknowledge decision: %v", err)
			return
		}

		submitterID := componentArg(i)
		var text string
		d, err := b.approvals.Decide(ctx, submitterID, action)
		switch {
		case errors.Is(err, models.ErrNotFound):
			text = services.MsgAlreadyResolved
		case err != nil:
			b.logger.Errorf(providers.TypeModeration, "Decision %s for %s failed: %v", action, submitterID, err)
			text = services.MsgAlreadyResolved
		default:
			text = d.Disposition()
			b.logger.Infof(providers.TypeModeration, "%s decided %s for %s", u.ID, action, submitterID)
			if d.Promoted {
				b.logger.Infof(providers.TypeModeration, "%s was promoted", submitterID)
			}
		}

		components := []discordgo.MessageComponent{}
		_, err = b.api.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
			Content:    &text,
			Components: &components,
		}, discordgo.WithContext(ctx))
		if err != nil {
			b.logger.Errorf(providers.TypeBot, "Could not update moderation message: %v", err)
		}
	}
}

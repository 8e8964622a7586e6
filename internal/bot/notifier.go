package bot

import (
	"context"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/services"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/bwmarrin/discordgo"
)

// ModerationNotifier drops new submissions into the moderation channel with
// the decision buttons attached.
type ModerationNotifier struct {
	api       Session
	channelID string
}

func NewModerationNotifier(conf *structures.Config, api Session) *ModerationNotifier {
	return &ModerationNotifier{api: api, channelID: conf.Channels.Moderation}
}

func (n *ModerationNotifier) NotifyPending(ctx context.Context, sub *models.Submission) error {
	if n.channelID == "" {
		return nil
	}
	_, err := n.api.ChannelMessageSendComplex(n.channelID, &discordgo.MessageSend{
		Content:    services.PendingCaption(sub),
		Files:      []*discordgo.File{jpegFile(sub.Image.NewReader())},
		Components: decisionButtons(sub.SubmitterID),
	}, discordgo.WithContext(ctx))
	return err
}

func decisionButtons(submitterID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Approve",
					Style:    discordgo.SuccessButton,
					CustomID: componentApprove + ":" + submitterID,
					Emoji:    &discordgo.ComponentEmoji{Name: "✅"},
				},
				discordgo.Button{
					Label:    "Deny",
					Style:    discordgo.DangerButton,
					CustomID: componentDeny + ":" + submitterID,
					Emoji:    &discordgo.ComponentEmoji{Name: "❌"},
				},
			},
		},
	}
}

package bot

import (
	"context"
	"io"

	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/bwmarrin/discordgo"
)

const vouchFileName = "vouch.jpg"

func jpegFile(r io.Reader) *discordgo.File {
	return &discordgo.File{Name: vouchFileName, ContentType: "image/jpeg", Reader: r}
}

// Broadcaster posts approved vouches to the public channel.
type Broadcaster struct {
	api       Session
	channelID string
}

func NewBroadcaster(conf *structures.Config, api Session) *Broadcaster {
	return &Broadcaster{api: api, channelID: conf.Channels.Broadcast}
}

func (b *Broadcaster) Broadcast(ctx context.Context, caption string, image io.Reader) error {
	_, err := b.api.ChannelMessageSendComplex(b.channelID, &discordgo.MessageSend{
		Content: caption,
		Files:   []*discordgo.File{jpegFile(image)},
	}, discordgo.WithContext(ctx))
	return err
}

// RoleGranter adds the promotion role in the configured guild.
type RoleGranter struct {
	api     Session
	guildID string
	roleID  string
}

func NewRoleGranter(conf *structures.Config, api Session) *RoleGranter {
	return &RoleGranter{api: api, guildID: conf.Bot.GuildID, roleID: conf.Promotion.RoleID}
}

func (g *RoleGranter) GrantMembership(ctx context.Context, userID string) error {
	return g.api.GuildMemberRoleAdd(g.guildID, userID, g.roleID, discordgo.WithContext(ctx))
}

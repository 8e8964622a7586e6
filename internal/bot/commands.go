package bot

import "github.com/bwmarrin/discordgo"

const (
	commandStart   = "start"
	commandCancel  = "cancel"
	commandPending = "pending"

	componentApprove = "approve"
	componentDeny    = "deny"
)

var dmAllowed = true

// conversationCommands work in direct messages and are registered globally.
var conversationCommands = []*discordgo.ApplicationCommand{
	{
		Name:         commandStart,
		Description:  "Start a new vouch submission",
		DMPermission: &dmAllowed,
	},
	{
		Name:         commandCancel,
		Description:  "Cancel the vouch you are submitting",
		DMPermission: &dmAllowed,
	},
}

// moderationCommands are registered in the configured guild only.
var moderationCommands = []*discordgo.ApplicationCommand{
	{
		Name:        commandPending,
		Description: "List vouches waiting for review",
	},
}

package bot

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type interactionHandler func(ctx context.Context, i *discordgo.InteractionCreate)

// Router dispatches slash commands by name and components by the part of the
// custom id before the first colon.
type Router struct {
	commands   map[string]interactionHandler
	components map[string]interactionHandler
}

func NewRouter() *Router {
	return &Router{
		commands:   make(map[string]interactionHandler),
		components: make(map[string]interactionHandler),
	}
}

func (r *Router) AddCommandHandler(name string, h interactionHandler) {
	r.commands[name] = h
}

func (r *Router) AddComponentHandler(prefix string, h interactionHandler) {
	r.components[prefix] = h
}

// Dispatch reports whether a handler was found.
func (r *Router) Dispatch(ctx context.Context, i *discordgo.InteractionCreate) bool {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if h, ok := r.commands[i.ApplicationCommandData().Name]; ok {
			h(ctx, i)
			return true
		}
	case discordgo.InteractionMessageComponent:
		key, _, _ := strings.Cut(i.MessageComponentData().CustomID, ":")
		if h, ok := r.components[key]; ok {
			h(ctx, i)
			return true
		}
	}
	return false
}

func componentArg(i *discordgo.InteractionCreate) string {
	_, arg, _ := strings.Cut(i.MessageComponentData().CustomID, ":")
	return arg
}

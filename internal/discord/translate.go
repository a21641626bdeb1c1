package discord

import (
	"tornbot/internal/torn/commands"

	"github.com/bwmarrin/discordgo"
)

// component ids
const (
	CustomIDAcceptTOS = "tos_accept"
	CustomIDKeyPrompt = "key_prompt"
	CustomIDKeyModal  = "key_modal"
	CustomIDKeyInput  = "api_key"
)

// ApplicationCommands converts the command table into Discord slash commands.
func ApplicationCommands(defs []commands.Definition) []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, 0, len(defs))
	for _, def := range defs {
		cmd := &discordgo.ApplicationCommand{
			Name:        def.Name,
			Description: def.Description,
		}
		if def.GuildOnly {
			dm := false
			cmd.DMPermission = &dm
		}
		if def.Arg != nil {
			cmd.Options = []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        def.Arg.Name,
				Description: def.Arg.Description,
				Required:    def.Arg.Required,
			}}
		}
		out = append(out, cmd)
	}
	return out
}

// RequestFromInteraction maps slash commands, the accept button and the key modal onto
// dispatcher requests. It returns false for interactions the dispatcher does not handle.
func RequestFromInteraction(i *discordgo.Interaction) (commands.Request, bool) {
	req := commands.Request{
		UserID:    userID(i),
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		req.Command = data.Name
		if len(data.Options) > 0 && data.Options[0].Type == discordgo.ApplicationCommandOptionString {
			req.Arg = data.Options[0].StringValue()
		}
		return req, true

	case discordgo.InteractionMessageComponent:
		if i.MessageComponentData().CustomID != CustomIDAcceptTOS {
			return req, false
		}
		req.Command = commands.CmdAcceptTOS
		return req, true

	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		if data.CustomID != CustomIDKeyModal {
			return req, false
		}
		req.Command = commands.CmdSetKey
		req.Arg = textInputValue(data.Components, CustomIDKeyInput)
		return req, true
	}

	return req, false
}

// IsKeyPrompt reports whether i is a click on the "set API key" button.
func IsKeyPrompt(i *discordgo.Interaction) bool {
	return i.Type == discordgo.InteractionMessageComponent &&
		i.MessageComponentData().CustomID == CustomIDKeyPrompt
}

// Response renders a reply as an immediate interaction response.
func Response(r commands.Reply) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{
		Content:    r.Content,
		Components: followUpComponents(r.FollowUp),
	}
	if r.Private {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

// DeferredResponse acknowledges a private command whose answer follows as an edit.
func DeferredResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}
}

// Edit renders a reply as the edit completing a deferred response.
func Edit(r commands.Reply) *discordgo.WebhookEdit {
	content := r.Content
	edit := &discordgo.WebhookEdit{Content: &content}
	if comps := followUpComponents(r.FollowUp); comps != nil {
		edit.Components = &comps
	}
	return edit
}

// KeyModal asks for the API key.
func KeyModal() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: CustomIDKeyModal,
			Title:    "Torn API key",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    CustomIDKeyInput,
						Label:       "Your limited Torn City API key",
						Style:       discordgo.TextInputShort,
						Placeholder: "16 character key",
						Required:    true,
						MinLength:   1,
						MaxLength:   64,
					},
				}},
			},
		},
	}
}

func followUpComponents(f commands.FollowUp) []discordgo.MessageComponent {
	var btn discordgo.Button
	switch f {
	case commands.FollowUpAcceptPrompt:
		btn = discordgo.Button{Label: "Accept", Style: discordgo.SuccessButton, CustomID: CustomIDAcceptTOS}
	case commands.FollowUpKeyPrompt:
		btn = discordgo.Button{Label: "Set API key", Style: discordgo.PrimaryButton, CustomID: CustomIDKeyPrompt}
	default:
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{btn}},
	}
}

func userID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func textInputValue(rows []discordgo.MessageComponent, customID string) string {
	for _, row := range rows {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range ar.Components {
			if ti, ok := c.(*discordgo.TextInput); ok && ti.CustomID == customID {
				return ti.Value
			}
		}
	}
	return ""
}

/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/voobly/voobly"
)

type VooblySubCommand string

const (
	VooblyHelpCmd    VooblySubCommand = "help"
	VooblyUserCmd    VooblySubCommand = "user"
	VooblyLadderCmd  VooblySubCommand = "ladder"
	VooblyLobbiesCmd VooblySubCommand = "lobbies"
	VooblyLastCmd    VooblySubCommand = "last"
)

const (
	defaultLadder = "RM - 1v1"
	defaultGame   = "Age of Empires II: The Conquerors"
	// ladder rows shown per reply; more would not fit a message
	ladderRowsShown = 20
)

var vooblySubCmdHdlrs = map[VooblySubCommand]CmdHandler{
	VooblyHelpCmd:    vooblyHelpCmdHandler,
	VooblyUserCmd:    vooblyUserCmdHandler,
	VooblyLadderCmd:  vooblyLadderCmdHandler,
	VooblyLobbiesCmd: vooblyLobbiesCmdHandler,
	VooblyLastCmd:    vooblyLastCmdHandler,
}

func vooblyApplicationCommand() *discordgo.ApplicationCommand {
	broadcast := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "broadcast",
		Description: "Share with the rest of the channel instead of only to you (default is false)",
		Required:    false,
	}
	ladder := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "ladder",
		Description: "Ladder name or id (default is RM - 1v1)",
		Required:    false,
	}
	name := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "name",
		Description: "Voobly username",
		Required:    true,
	}

	return &discordgo.ApplicationCommand{
		Name:        string(VooblyCmd),
		Description: "Voobly lookups; try /voobly help to start",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(VooblyHelpCmd),
				Description: "Show usage for voobly",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(VooblyUserCmd),
				Description: "Show a player's profile and rating",
				Options: []*discordgo.ApplicationCommandOption{
					name, ladder, broadcast,
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(VooblyLadderCmd),
				Description: "Show ladder rankings",
				Options: []*discordgo.ApplicationCommandOption{
					ladder,
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "start",
						Description: "Rank offset to start from (default is 0)",
						Required:    false,
					},
					broadcast,
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(VooblyLobbiesCmd),
				Description: "List a game's lobbies",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "game",
						Description: "Game name or id",
						Required:    false,
					},
					broadcast,
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(VooblyLastCmd),
				Description: "Show a player's most recent matches",
				Options: []*discordgo.ApplicationCommandOption{
					name, broadcast,
				},
			},
		},
	}
}

func vooblyCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	data := inter.ApplicationCommandData()
	hdlr := vooblyHelpCmdHandler
	if len(data.Options) > 0 {
		if subName := data.Options[0].Name; subName != "" {
			h, ok := vooblySubCmdHdlrs[VooblySubCommand(subName)]
			if ok {
				hdlr = h
			}
		}
	}
	return hdlr(ctx, inter)
}

func newResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}
}

// subOptions returns the options of the invoked subcommand by name, and
// whether the reply should be broadcast.
func subOptions(
	inter *discordgo.Interaction) (map[string]*discordgo.ApplicationCommandInteractionDataOption, bool) {

	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	data := inter.ApplicationCommandData()
	if len(data.Options) == 0 {
		return opts, false
	}
	for _, opt := range data.Options[0].Options {
		opts[opt.Name] = opt
	}
	broadcast := false // default
	if opt, ok := opts["broadcast"]; ok {
		broadcast = opt.BoolValue()
	}
	return opts, broadcast
}

func stringOpt(opts map[string]*discordgo.ApplicationCommandInteractionDataOption,
	name string, def string) string {

	if opt, ok := opts[name]; ok {
		if v := strings.TrimSpace(opt.StringValue()); v != "" {
			return v
		}
	}
	return def
}

func parseLadder(v string) voobly.LadderRef {
	if n, err := strconv.Atoi(v); err == nil {
		return voobly.Ladder(voobly.LadderID(n))
	}
	return voobly.LadderNamed(v)
}

func parseGame(v string) voobly.GameRef {
	if n, err := strconv.Atoi(v); err == nil {
		return voobly.Game(voobly.GameID(n))
	}
	return voobly.GameNamed(v)
}

// errorContent renders err for a discord user; lookup failures the user can
// fix get a plain explanation instead of the raw error.
func errorContent(what string, err error) string {
	switch voobly.KindOf(err) {
	case voobly.KindNotFound:
		return fmt.Sprintf("Could not find %v.", what)
	case voobly.KindValidation:
		return fmt.Sprintf("Invalid request for %v: %v", what, err)
	case voobly.KindRateLimit:
		return "Voobly is busy right now; please try again later."
	}
	return fmt.Sprintf("Error fetching %v: %v", what, err)
}

//go:embed help.md
var helpText string

func vooblyHelpCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	resp.Data.Content = truncateContent(helpText)
	return resp
}

// vooblyUserCmdHandler handles /voobly user to display a player's profile
// and ladder standing
func vooblyUserCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subOptions(inter)
	name := stringOpt(opts, "name", "")
	if name == "" {
		resp.Data.Content = "Please provide a username."
		log.Printf("discordbot.user: %v", resp.Data.Content)
		return resp
	}
	ladderName := stringOpt(opts, "ladder", defaultLadder)

	summary, err := theBot.session.User(ctx, name, parseLadder(ladderName))
	if err != nil {
		resp.Data.Content = errorContent(fmt.Sprintf("user %v", name), err)
		log.Printf("discordbot.user: %v", resp.Data.Content)
		return resp
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**ID**: %v\n", summary.ID))
	if summary.Nation != "" {
		sb.WriteString(fmt.Sprintf("**Nation**: %v\n", summary.Nation))
	}
	if summary.Tagline != "" {
		sb.WriteString(fmt.Sprintf("**Tagline**: %v\n", summary.Tagline))
	}
	if len(summary.Ladders) == 0 {
		sb.WriteString(fmt.Sprintf("Not ranked on %v\n", ladderName))
	}
	for _, e := range summary.Ladders {
		sb.WriteString(fmt.Sprintf("**%v**: %v (%vW/%vL, streak %v)\n",
			ladderName, e.Rating, e.Wins, e.Losses, e.Streak))
	}
	embed := &discordgo.MessageEmbed{
		Title:       summary.Name,
		URL:         fmt.Sprintf("https://www.voobly.com/profile/view/%v", summary.ID),
		Type:        discordgo.EmbedTypeLink,
		Description: sb.String(),
	}
	resp.Data.Embeds = []*discordgo.MessageEmbed{embed}
	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// vooblyLadderCmdHandler handles /voobly ladder to display rankings
func vooblyLadderCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subOptions(inter)
	ladderName := stringOpt(opts, "ladder", defaultLadder)
	start := 0
	if opt, ok := opts["start"]; ok {
		start = int(opt.IntValue())
	}
	if start < 0 {
		start = 0
	}

	entries, err := theBot.session.GetLadder(ctx, parseLadder(ladderName),
		voobly.LadderQuery{Start: start, Limit: ladderRowsShown})
	if err != nil {
		resp.Data.Content = errorContent(fmt.Sprintf("ladder %v", ladderName), err)
		log.Printf("discordbot.ladder: %v", resp.Data.Content)
		return resp
	}
	if len(entries) == 0 {
		resp.Data.Content = fmt.Sprintf("No entries found on ladder %v.", ladderName)
		log.Printf("discordbot.ladder: %v", resp.Data.Content)
		return resp
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-5s %-20s %6s %9s\n", "Rank", "Name", "Rating",
		"W/L"))
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%-5d %-20s %6d %4d/%-4d\n", e.Rank, e.Name,
			e.Rating, e.Wins, e.Losses))
	}
	// Wrap output in code block for monospace formatting in Discord
	resp.Data.Content = fmt.Sprintf("**%v**\n```\n%s```", ladderName,
		truncateContent(sb.String()))

	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// vooblyLobbiesCmdHandler handles /voobly lobbies to list a game's lobbies
func vooblyLobbiesCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subOptions(inter)
	game := stringOpt(opts, "game", defaultGame)

	lobbies, err := theBot.session.GetLobbies(ctx, parseGame(game))
	if err != nil {
		resp.Data.Content = errorContent(fmt.Sprintf("lobbies for %v", game), err)
		log.Printf("discordbot.lobbies: %v", resp.Data.Content)
		return resp
	}
	if len(lobbies) == 0 {
		resp.Data.Content = fmt.Sprintf("No lobbies found for %v.", game)
		return resp
	}

	var sb strings.Builder
	for _, l := range lobbies {
		sb.WriteString(fmt.Sprintf("- %v: %v/%v online\n", l.Name, l.PlayersOnline,
			l.MaxPlayers))
	}
	resp.Data.Content = truncateContent(sb.String())
	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// vooblyLastCmdHandler handles /voobly last to display recent matches
func vooblyLastCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	opts, broadcast := subOptions(inter)
	name := stringOpt(opts, "name", "")
	if name == "" {
		resp.Data.Content = "Please provide a username."
		log.Printf("discordbot.last: %v", resp.Data.Content)
		return resp
	}
	if !theBot.session.HasWebLogin() {
		resp.Data.Content = "Match history is not available: the bot has no voobly login."
		log.Printf("discordbot.last: %v", resp.Data.Content)
		return resp
	}

	uid, err := theBot.session.FindUser(ctx, name)
	if err != nil {
		resp.Data.Content = errorContent(fmt.Sprintf("user %v", name), err)
		log.Printf("discordbot.last: %v", resp.Data.Content)
		return resp
	}
	matches, err := theBot.session.GetLastMatches(ctx, uid)
	if err != nil {
		resp.Data.Content = errorContent(fmt.Sprintf("matches for %v", name), err)
		log.Printf("discordbot.last: %v", resp.Data.Content)
		return resp
	}
	if len(matches) == 0 {
		resp.Data.Content = fmt.Sprintf("No recent matches found for %v.", name)
		return resp
	}

	var sb strings.Builder
	for _, m := range matches {
		players := make([]string, 0, len(m.Players))
		for _, p := range m.Players {
			players = append(players, fmt.Sprintf("%v (%v)", p.Username, p.Civ))
		}
		sb.WriteString(fmt.Sprintf("- %v #%v: %v\n", m.Played.Format("2006-01-02"),
			m.ID, strings.Join(players, " vs ")))
	}
	resp.Data.Content = truncateContent(sb.String())
	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

func truncateContent(s string) string {
	const MsgLimit = 1988 // keep space for newlines and markdown
	runes := []rune(s)
	if len(runes) > MsgLimit {
		s = fmt.Sprintf("%v...", string(runes[:MsgLimit]))
	}
	return s
}

/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mikeb26/voobly/internal/config"
	"github.com/mikeb26/voobly/voobly"
)

const (
	EnvBotToken  = "DISCORD_BOT_TOKEN"
	EnvPublicKey = "DISCORD_PUBLIC_KEY"
	EnvAppID     = "DISCORD_APP_ID"
	EnvCmdID     = "DISCORD_VOOBLY_CMD_ID"
	EnvCmdHash   = "DISCORD_VOOBLY_CMD_HASH"
	EnvListen    = "DISCORD_LISTEN_ADDR"
)

type TopLevelCommand string

const (
	VooblyCmd TopLevelCommand = "voobly"
)

type CmdHandler func(ctx context.Context,
	i *discordgo.Interaction) *discordgo.InteractionResponse

var topLevelCmdHdlrs = map[TopLevelCommand]CmdHandler{
	VooblyCmd: vooblyCmdHandler,
}

// bot holds what the interaction handlers share.
type bot struct {
	pubKey  ed25519.PublicKey
	session *voobly.Session
}

var theBot bot

func interactionHandler(w http.ResponseWriter, r *http.Request) {
	if !discordgo.VerifyInteraction(r, theBot.pubKey) {
		log.Printf("discordbot.int: failed to verify")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("discordbot.int: failed to read request body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var inter discordgo.Interaction
	if err := inter.UnmarshalJSON(body); err != nil {
		log.Printf("discordbot.int: failed to unmarshal interaction: err:%v body:%v",
			err, body)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp, status := dispatchInteraction(r.Context(), &inter)
	if resp == nil {
		w.WriteHeader(status)
		return
	}

	rawResp, err := json.Marshal(resp)
	if err != nil {
		log.Printf("discordbot.int: failed to marshal resp: err:%v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err = w.Write(rawResp); err != nil {
		log.Printf("discordbot.int: failed to write resp: err:%v", err)
	}
}

// dispatchInteraction answers a verified interaction. A nil response means
// the interaction is not handled and status should be returned instead.
func dispatchInteraction(ctx context.Context,
	inter *discordgo.Interaction) (*discordgo.InteractionResponse, int) {

	resp := &discordgo.InteractionResponse{}
	switch inter.Type {
	case discordgo.InteractionPing:
		resp.Type = discordgo.InteractionResponsePong
	case discordgo.InteractionApplicationCommand:
		name := inter.ApplicationCommandData().Name
		hdlr, ok := topLevelCmdHdlrs[TopLevelCommand(name)]
		if !ok {
			resp.Type = discordgo.InteractionResponseChannelMessageWithSource
			resp.Data = &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("unknown command '%v'", name),
				Flags:   discordgo.MessageFlagsEphemeral,
			}
		} else {
			resp = hdlr(ctx, inter)
		}
	default:
		log.Printf("discordbot.int: unimplemented interation type %v: inter:%v",
			inter.Type, inter)
		return nil, http.StatusNotImplemented
	}
	return resp, http.StatusOK
}

func cmdRegistrationHash(cmd *discordgo.ApplicationCommand) (string, error) {
	cmdJson, err := json.Marshal(cmd)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(cmdJson)
	return hex.EncodeToString(hash[:]), nil
}

func shouldUpdateCmdRegistration(cmd *discordgo.ApplicationCommand,
	lastHash string) bool {

	hexString, err := cmdRegistrationHash(cmd)
	if err != nil {
		log.Printf("discordbot.reg: failed to marshal cmd: %v", err)
		return false
	}

	shouldUpdate := (hexString != lastHash)
	if shouldUpdate {
		log.Printf("discordbot.reg: updating cmd reg; please set %v to %v",
			EnvCmdHash, hexString)
	}

	return shouldUpdate
}

func registerSlashCommands(client *discordgo.Session, appID string) {
	cmd := vooblyApplicationCommand()
	cmdID := os.Getenv(EnvCmdID)

	if cmdID == "" {
		created, err := client.ApplicationCommandCreate(appID, "", cmd)
		if err != nil {
			log.Printf("discordbot.reg: failed to register %v: %v", cmd.Name, err)
			return
		}

		log.Printf("discordbot.reg: registered %v(cmdID:%v)", created.Name,
			created.ID)
	} else if shouldUpdateCmdRegistration(cmd, os.Getenv(EnvCmdHash)) {
		updated, err := client.ApplicationCommandEdit(appID, "", cmdID, cmd)
		if err != nil {
			log.Printf("discordbot.reg: failed to update %v: %v", cmd.Name, err)
			return
		}

		log.Printf("discordbot.reg: updated %v(cmdID:%v)", updated.Name, updated.ID)
	}
}

func main() {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("discordbot.init: %v", err)
	}

	pubKeyBytes, err := hex.DecodeString(os.Getenv(EnvPublicKey))
	if err != nil || len(pubKeyBytes) != ed25519.PublicKeySize {
		log.Fatalf("discordbot.init: Failed to parse public key %v: %v",
			EnvPublicKey, err)
	}
	theBot.pubKey = ed25519.PublicKey(pubKeyBytes)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	theBot.session, err = cfg.NewSession(ctx,
		voobly.WithMetrics(voobly.NewMetrics(reg)))
	if err != nil {
		log.Fatalf("discordbot.init: Failed to create voobly session: %v", err)
	}

	client, err := discordgo.New("Bot " + os.Getenv(EnvBotToken))
	if err != nil {
		log.Fatalf("discordbot.init: Failed to initialize discord client: %v", err)
	}
	go registerSlashCommands(client, os.Getenv(EnvAppID))

	addr := os.Getenv(EnvListen)
	if addr == "" {
		addr = ":8080"
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	log.Printf("discordbot.main: starting server on %v%v", hostname, addr)

	http.HandleFunc("/DiscordBot/Interaction", interactionHandler)
	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("discordbot.main: Serve failed: %v", err)
	}

	log.Printf("discordbot.main: exiting")
}

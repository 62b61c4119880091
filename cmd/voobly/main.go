/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mikeb26/voobly/internal/config"
	"github.com/mikeb26/voobly/voobly"
)

//go:embed help.txt
var helpText string

const defaultGame = "Age of Empires II: The Conquerors"

// cmdHandler defines the signature for command handler functions.
type cmdHandler func(ctx context.Context, args []string)

// commands maps command names to their respective handler functions.
var commands = map[string]cmdHandler{
	"help":     handleHelp,
	"validate": handleValidate,
	"games":    handleGames,
	"finduser": handleFindUser,
	"user":     handleUser,
	"ladder":   handleLadder,
	"lobbies":  handleLobbies,
	"ladders":  handleLadders,
	"match":    handleMatch,
	"last":     handleLast,
	"download": handleDownload,
}

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if handler, ok := commands[cmd]; ok {
		handler(ctx, os.Args[2:])
	} else {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf("%v", helpText)
}

func handleHelp(ctx context.Context, args []string) {
	usage()
}

func newSession(ctx context.Context) *voobly.Session {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	s, err := cfg.NewSession(ctx)
	if err != nil {
		log.Fatalf("Error creating session: %v", err)
	}
	return s
}

// ladderList collects repeated --ladder flags.
type ladderList []voobly.LadderRef

func (l *ladderList) String() string {
	return fmt.Sprintf("%v", *l)
}

func (l *ladderList) Set(v string) error {
	*l = append(*l, parseLadder(v))
	return nil
}

// uidList collects repeated --uid flags.
type uidList []voobly.UserID

func (l *uidList) String() string {
	return fmt.Sprintf("%v", *l)
}

func (l *uidList) Set(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid user id %q", v)
	}
	*l = append(*l, voobly.UserID(n))
	return nil
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

func handleValidate(ctx context.Context, args []string) {
	s := newSession(ctx)
	ok, err := s.ValidateKey(ctx)
	if err != nil {
		log.Fatalf("Error validating key: %v", err)
	}
	if !ok {
		fmt.Println("key is not valid")
		os.Exit(1)
	}
	fmt.Println("key is valid")
}

func handleGames(ctx context.Context, args []string) {
	fmt.Println("Games:")
	for _, name := range voobly.GameNames() {
		id, _ := voobly.LookupGameID(name)
		fmt.Printf("  %-40s %d\n", name, id)
	}
	fmt.Println("Ladders:")
	for _, name := range voobly.LadderNames() {
		id, _ := voobly.LookupLadderID(name)
		fmt.Printf("  %-40s %d\n", name, id)
	}
}

func handleFindUser(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("finduser", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Please provide at least one username.")
		os.Exit(1)
	}
	s := newSession(ctx)
	matches, err := s.FindUsers(ctx, fs.Args()...)
	if err != nil {
		log.Fatalf("Error finding users: %v", err)
	}
	if len(matches) == 0 {
		fmt.Println("No users found.")
		return
	}
	for _, m := range matches {
		fmt.Printf("%-24s %d\n", m.Name, m.ID)
	}
}

func handleUser(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("user", flag.ExitOnError)
	name := fs.String("name", "", "Username to look up")
	var ladders ladderList
	fs.Var(&ladders, "ladder", "Ladder name or id to report (repeatable)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *name == "" {
		fmt.Fprintln(os.Stderr, "Please provide a valid --name.")
		fs.Usage()
		os.Exit(1)
	}
	if len(ladders) == 0 {
		ladders = ladderList{voobly.LadderNamed("RM - 1v1")}
	}

	s := newSession(ctx)
	summary, err := s.User(ctx, *name, ladders...)
	if err != nil {
		log.Fatalf("Error fetching user %v: %v", *name, err)
	}
	fmt.Printf("Name: %v\n", summary.Name)
	fmt.Printf("ID: %v\n", summary.ID)
	if summary.Nation != "" {
		fmt.Printf("Nation: %v\n", summary.Nation)
	}
	if summary.Tagline != "" {
		fmt.Printf("Tagline: %v\n", summary.Tagline)
	}
	if len(summary.Ladders) == 0 {
		fmt.Println("Not ranked on any requested ladder.")
		return
	}

	var ids []voobly.LadderID
	for id := range summary.Ladders {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		e := summary.Ladders[id]
		fmt.Printf("Ladder %v: rating %v (%vW/%vL, streak %v)\n", id, e.Rating,
			e.Wins, e.Losses, e.Streak)
	}
}

func handleLadder(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("ladder", flag.ExitOnError)
	ladder := fs.String("ladder", "RM - 1v1", "Ladder name or id")
	start := fs.Int("start", 0, "Offset of the first row")
	limit := fs.Int("limit", voobly.LadderResultLimit, "Number of rows (1-40)")
	var uids uidList
	fs.Var(&uids, "uid", "Restrict to this user id (repeatable)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	s := newSession(ctx)
	entries, err := s.GetLadder(ctx, parseLadder(*ladder), voobly.LadderQuery{
		UserIDs: uids,
		Start:   *start,
		Limit:   *limit,
	})
	if err != nil {
		log.Fatalf("Error fetching ladder %v: %v", *ladder, err)
	}
	if len(entries) == 0 {
		fmt.Println("No ladder entries found.")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Rank\tName\tRating\tW\tL\tStreak")
	for _, e := range entries {
		fmt.Fprintf(tw, "%v\t%v\t%v\t%v\t%v\t%v\n", e.Rank, e.Name, e.Rating,
			e.Wins, e.Losses, e.Streak)
	}
	tw.Flush()
}

func handleLobbies(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("lobbies", flag.ExitOnError)
	game := fs.String("game", defaultGame, "Game name or id")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	s := newSession(ctx)
	lobbies, err := s.GetLobbies(ctx, parseGame(*game))
	if err != nil {
		log.Fatalf("Error fetching lobbies for %v: %v", *game, err)
	}
	for _, l := range lobbies {
		fmt.Printf("%-32s %4d/%-4d ladders:%v\n", l.Name, l.PlayersOnline,
			l.MaxPlayers, l.Ladders)
	}
}

func handleLadders(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("ladders", flag.ExitOnError)
	game := fs.String("game", defaultGame, "Game name or id")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	s := newSession(ctx)
	ids, err := s.Ladders(ctx, parseGame(*game))
	if err != nil {
		log.Fatalf("Error fetching ladders for %v: %v", *game, err)
	}
	names := make(map[voobly.LadderID]string)
	for _, name := range voobly.LadderNames() {
		id, _ := voobly.LookupLadderID(name)
		names[id] = name
	}
	for _, id := range ids {
		fmt.Printf("%6d %v\n", id, names[id])
	}
}

func printMatch(m *voobly.Match) {
	fmt.Printf("Match %v played %v\n", m.ID, m.Played.Format("2006-01-02 15:04"))
	for _, p := range m.Players {
		name := p.Username
		if p.Clan != "" {
			name = fmt.Sprintf("[%v]%v", p.Clan, p.Username)
		}
		rating := "unrated"
		if p.RatingBefore != nil && p.RatingAfter != nil {
			rating = fmt.Sprintf("%v -> %v", *p.RatingBefore, *p.RatingAfter)
		}
		fmt.Printf("  %-24s %-8s %v\n", name, p.Civ, rating)
	}
}

func handleMatch(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("match", flag.ExitOnError)
	matchID := fs.Int("id", 0, "Match id")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *matchID <= 0 {
		fmt.Fprintln(os.Stderr, "Please provide a valid --id.")
		fs.Usage()
		os.Exit(1)
	}

	s := newSession(ctx)
	m, err := s.GetMatch(ctx, voobly.MatchID(*matchID))
	if err != nil {
		log.Fatalf("Error fetching match %v: %v", *matchID, err)
	}
	printMatch(m)
}

func lastMatches(ctx context.Context, s *voobly.Session,
	name string) []*voobly.Match {

	uid, err := s.FindUser(ctx, name)
	if err != nil {
		log.Fatalf("Error finding user %v: %v", name, err)
	}
	matches, err := s.GetLastMatches(ctx, uid)
	if err != nil {
		log.Fatalf("Error fetching matches for %v: %v", name, err)
	}
	return matches
}

func handleLast(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("last", flag.ExitOnError)
	name := fs.String("name", "", "Username")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *name == "" {
		fmt.Fprintln(os.Stderr, "Please provide a valid --name.")
		fs.Usage()
		os.Exit(1)
	}

	s := newSession(ctx)
	matches := lastMatches(ctx, s, *name)
	if len(matches) == 0 {
		fmt.Println("No recent matches found.")
		return
	}
	for _, m := range matches {
		printMatch(m)
	}
}

func handleDownload(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	name := fs.String("name", "", "Username")
	dir := fs.String("dir", ".", "Destination directory")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if strings.TrimSpace(*name) == "" {
		fmt.Fprintln(os.Stderr, "Please provide a valid --name.")
		fs.Usage()
		os.Exit(1)
	}

	s := newSession(ctx)
	matches := lastMatches(ctx, s, *name)
	files, err := s.DownloadGameList(ctx, *name, matches, *dir)
	for _, f := range files {
		fmt.Printf("downloaded %v\n", f)
	}
	if err != nil {
		log.Fatalf("Error downloading recorded games: %v", err)
	}
}

/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type GameID int

// GameRef names a game by id or by a name known to LookupGameID.
type GameRef struct {
	id   GameID
	name string
}

func Game(id GameID) GameRef {
	return GameRef{id: id}
}

func GameNamed(name string) GameRef {
	return GameRef{name: name}
}

func (r GameRef) resolve() (GameID, error) {
	if r.name != "" {
		return LookupGameID(r.name)
	}
	if r.id <= 0 {
		return 0, validationErrorf("invalid game id %d", r.id)
	}
	return r.id, nil
}

type Lobby struct {
	ID            int
	Name          string
	PlayersOnline int
	MaxPlayers    int
	Ladders       []LadderID
	Raw           Record
}

// GetLobbies lists the lobbies of a game.
func (s *Session) GetLobbies(ctx context.Context, game GameRef) ([]Lobby, error) {
	id, err := game.resolve()
	if err != nil {
		return nil, err
	}

	ep := apiEndpoint("lobbies", fmt.Sprintf("lobbies/%d", id))
	records, err := s.requestRecords(ctx, ep, nil)
	if err != nil {
		return nil, err
	}

	lobbies := make([]Lobby, 0, len(records))
	for _, rec := range records {
		lobbies = append(lobbies, Lobby{
			ID:            rec.intOr("lobbyid", 0),
			Name:          rec["name"],
			PlayersOnline: rec.intOr("players_online", 0),
			MaxPlayers:    rec.intOr("max_players", 0),
			Ladders:       parseLadderList(rec["ladders"]),
			Raw:           rec,
		})
	}
	return lobbies, nil
}

// parseLadderList splits voobly's "131|132|" ladder column.
func parseLadderList(s string) []LadderID {
	var out []LadderID
	for _, part := range strings.Split(s, "|") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		out = append(out, LadderID(n))
	}
	return out
}

// Ladders returns the distinct ladders hosted by any lobby of game, sorted.
func (s *Session) Ladders(ctx context.Context, game GameRef) ([]LadderID, error) {
	lobbies, err := s.GetLobbies(ctx, game)
	if err != nil {
		return nil, err
	}

	seen := make(map[LadderID]struct{})
	var out []LadderID
	for _, lobby := range lobbies {
		for _, id := range lobby.Ladders {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

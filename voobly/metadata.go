/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

//go:embed metadata/*.json
var metadataFS embed.FS

type metadataEntry struct {
	ID int `json:"id"`
}

var (
	metadataOnce sync.Once
	gameIDs      map[string]GameID
	ladderIDs    map[string]LadderID
)

func loadMetadata() {
	metadataOnce.Do(func() {
		games := readMetadata("games")
		gameIDs = make(map[string]GameID, len(games))
		for name, e := range games {
			gameIDs[name] = GameID(e.ID)
		}
		ladders := readMetadata("ladders")
		ladderIDs = make(map[string]LadderID, len(ladders))
		for name, e := range ladders {
			ladderIDs[name] = LadderID(e.ID)
		}
	})
}

func readMetadata(name string) map[string]metadataEntry {
	data, err := metadataFS.ReadFile(fmt.Sprintf("metadata/%v.json", name))
	if err != nil {
		panic(fmt.Sprintf("failed to read %v metadata: %v", name, err))
	}
	var out map[string]metadataEntry
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("failed to parse %v metadata: %v", name, err))
	}
	return out
}

// LookupLadderID maps a ladder name such as "RM - 1v1" to its id.
func LookupLadderID(name string) (LadderID, error) {
	loadMetadata()
	id, ok := ladderIDs[name]
	if !ok {
		return 0, validationErrorf("could not find ladder id for %q", name)
	}
	return id, nil
}

// LookupGameID maps a game name to its id.
func LookupGameID(name string) (GameID, error) {
	loadMetadata()
	id, ok := gameIDs[name]
	if !ok {
		return 0, validationErrorf("could not find game id for %q", name)
	}
	return id, nil
}

// LadderNames returns the known ladder names, sorted.
func LadderNames() []string {
	loadMetadata()
	return sortedKeys(ladderIDs)
}

// GameNames returns the known game names, sorted.
func GameNames() []string {
	loadMetadata()
	return sortedKeys(gameIDs)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

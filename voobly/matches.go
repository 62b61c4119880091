/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mikeb26/voobly/internal"
)

// LastMatchesLimit is how many matches GetLastMatches returns at most.
const LastMatchesLimit = 9

const (
	matchPath          = "/match/view"
	recordingsPath     = "/recording/browse"
	profilePathMarker  = "/profile/view/"
	recLinkPrefix      = "/files/view"
	civImageMarker     = "/civs/"
	matchDatePlayedTag = "Date Played:"
)

var (
	newRatingRe = regexp.MustCompile(`New Rating:\s*(\d+)`)
	pointsRe    = regexp.MustCompile(`Points:\s*([+-]?\d+)`)
	matchRefRe  = regexp.MustCompile(`Match:\s*#(\d+)`)
)

// player colors in slot order
var colorIDs = map[string]int{
	"#0054A6": 0,
	"#FF0000": 1,
	"#00A651": 2,
	"#FFFF00": 3,
	"#00FFFF": 4,
	"#92278F": 5,
	"#C0C0C0": 6,
	"#FF8000": 7,
}

// civilization names by the number in their icon file name
var civNames = map[int]string{
	1: "Brit", 2: "Frank", 3: "Goth", 4: "Teu", 5: "Jap", 6: "Chi", 7: "Byz",
	8: "Per", 9: "Sar", 10: "Turk", 11: "Vik", 12: "Mon", 13: "Cel", 14: "Spa",
	15: "Azt", 16: "May", 17: "Hun", 18: "Kor", 19: "Ita", 20: "Ind", 21: "Inc",
	22: "Mag", 23: "Sla", 24: "Por", 25: "Eth", 26: "Mal", 27: "Ber", 28: "Khm",
	29: "Malay", 30: "Bur", 31: "Vie",
}

type MatchID int

type MatchPlayer struct {
	// RecURL is the site-relative path of the player's recorded game.
	RecURL   string
	ID       UserID
	Username string
	Clan     string
	Civ      string
	// ColorID is the player slot color, or -1 if unknown.
	ColorID int
	// RatingBefore and RatingAfter are nil for unrated matches.
	RatingBefore *int
	RatingAfter  *int
}

type Match struct {
	ID      MatchID
	Played  time.Time
	Players []MatchPlayer
}

// GetMatch scrapes a match page. Requires a web login.
func (s *Session) GetMatch(ctx context.Context, id MatchID) (*Match, error) {
	if id <= 0 {
		return nil, validationErrorf("invalid match id %d", id)
	}
	ep := webEndpoint("match", fmt.Sprintf("%v/%d", matchPath, id))
	var m *Match
	_, err := s.Request(ctx, ep, nil, WithDecoder(func(body []byte) error {
		var err error
		m, err = parseMatch(ep, id, body)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func parseMatch(ep Endpoint, id MatchID, body []byte) (*Match, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindBadResponse, ep, "parsing match page", body, err)
	}

	dateTd := doc.Find("td").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return strings.TrimSpace(sel.Text()) == matchDatePlayedTag
	}).First()
	if dateTd.Length() == 0 {
		return nil, newError(KindBadResponse, ep, "match page has no date played",
			body, nil)
	}
	played, err := internal.ParseDateOrZero(dateTd.Next().Text())
	if err != nil {
		return nil, newError(KindBadResponse, ep, "parsing date played", body, err)
	}

	match := &Match{ID: id, Played: played}
	doc.Find(fmt.Sprintf("a[href^='%v']", recLinkPrefix)).Each(
		func(_ int, rec *goquery.Selection) {
			player, ok := parseMatchPlayer(doc, rec)
			if ok {
				match.Players = append(match.Players, player)
			}
		})

	return match, nil
}

// parseMatchPlayer builds a player from its recorded game link, which names
// the player as "[CLAN]name", and the profile row carrying the player's
// color, civilization and rating change.
func parseMatchPlayer(doc *goquery.Document,
	rec *goquery.Selection) (MatchPlayer, bool) {

	label := strings.TrimSpace(rec.Find("b").First().Text())
	if label == "" {
		label = strings.TrimSpace(rec.Text())
	}
	player := MatchPlayer{
		RecURL:   rec.AttrOr("href", ""),
		Username: label,
		ColorID:  -1,
	}
	if strings.HasPrefix(label, "[") {
		if end := strings.Index(label, "]"); end > 0 {
			player.Clan = label[1:end]
			player.Username = label[end+1:]
		}
	}

	profile := doc.Find(fmt.Sprintf("a[href*='%v']", profilePathMarker)).FilterFunction(
		func(_ int, sel *goquery.Selection) bool {
			return strings.TrimSpace(sel.Text()) == player.Username
		}).First()
	if profile.Length() == 0 {
		// voobly occasionally serves match pages missing a player's profile
		return MatchPlayer{}, false
	}
	href := profile.AttrOr("href", "")
	uid, err := strconv.Atoi(href[strings.LastIndex(href, "/")+1:])
	if err != nil {
		return MatchPlayer{}, false
	}
	player.ID = UserID(uid)

	rating := profile.NextAllFiltered("span").First().Text()
	if m := newRatingRe.FindStringSubmatch(rating); m != nil {
		after, _ := strconv.Atoi(m[1])
		player.RatingAfter = &after
		if p := pointsRe.FindStringSubmatch(rating); p != nil {
			points, _ := strconv.Atoi(p[1])
			before := after - points
			player.RatingBefore = &before
		}
	}

	row := profile.Closest("tr")
	if src, ok := row.Find(fmt.Sprintf("img[src*='%v']", civImageMarker)).Attr("src"); ok {
		player.Civ = civFromImage(src)
	}
	if style, ok := row.Find("div[style*='background-color']").Attr("style"); ok {
		player.ColorID = colorFromStyle(style)
	}

	return player, true
}

func civFromImage(src string) string {
	rest := src[strings.Index(src, civImageMarker)+len(civImageMarker):]
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		rest = rest[:end]
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return ""
	}
	return civNames[n]
}

func colorFromStyle(style string) int {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok || strings.TrimSpace(name) != "background-color" {
			continue
		}
		if id, ok := colorIDs[strings.ToUpper(strings.TrimSpace(value))]; ok {
			return id
		}
	}
	return -1
}

// GetLastMatches returns up to LastMatchesLimit of uid's most recent recorded
// matches, newest first. Requires a web login. Each match is fetched (and
// cached) independently.
func (s *Session) GetLastMatches(ctx context.Context, uid UserID) ([]*Match, error) {
	if uid <= 0 {
		return nil, validationErrorf("invalid user id %d", uid)
	}
	ep := webEndpoint("recordings", fmt.Sprintf("%v/%d", recordingsPath, uid))
	var ids []MatchID
	_, err := s.Request(ctx, ep, nil, WithDecoder(func(body []byte) error {
		var err error
		ids, err = parseMatchRefs(ep, body)
		return err
	}))
	if err != nil {
		return nil, err
	}

	matches := make([]*Match, 0, len(ids))
	for _, id := range ids {
		m, err := s.GetMatch(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetching match %v: %w", id, err)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func parseMatchRefs(ep Endpoint, body []byte) ([]MatchID, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindBadResponse, ep, "parsing recordings page", body, err)
	}

	var ids []MatchID
	seen := make(map[MatchID]struct{})
	for _, m := range matchRefRe.FindAllStringSubmatch(doc.Text(), -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		id := MatchID(n)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
		if len(ids) == LastMatchesLimit {
			break
		}
	}
	return ids, nil
}

/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

type UserID int

// UserRef names a user either by id or by username.
type UserRef struct {
	id   UserID
	name string
}

func ByID(id UserID) UserRef {
	return UserRef{id: id}
}

func ByName(name string) UserRef {
	return UserRef{name: name}
}

func (r UserRef) String() string {
	if r.name != "" {
		return r.name
	}
	return fmt.Sprintf("%d", r.id)
}

// UserMatch is one result of a username search.
type UserMatch struct {
	ID   UserID
	Name string
}

// Profile is a user's public profile.
type Profile struct {
	ID      UserID
	Name    string
	Nation  string
	Tagline string
	// Raw holds every column voobly returned, including the ones above.
	Raw Record
}

// FindUser resolves a username to its id.
func (s *Session) FindUser(ctx context.Context, username string) (UserID, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, validationErrorf("username must not be empty")
	}

	ep := apiEndpoint("finduser", "finduser/"+url.PathEscape(username))
	records, err := s.requestRecords(ctx, ep, nil)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, newError(KindNotFound, ep, "user not found", nil, nil)
	}
	uid, err := records[0].Int("uid")
	if err != nil {
		return 0, newError(KindNotFound, ep, "user not found", nil, err)
	}
	return UserID(uid), nil
}

// FindUsers resolves several usernames in one request. Names voobly does not
// know are simply absent from the result.
func (s *Session) FindUsers(ctx context.Context,
	usernames ...string) ([]UserMatch, error) {

	if len(usernames) == 0 {
		return nil, validationErrorf("must supply at least one username")
	}
	escaped := make([]string, len(usernames))
	for i, name := range usernames {
		name = strings.TrimSpace(name)
		if name == "" || strings.Contains(name, ",") {
			return nil, validationErrorf("invalid username %q", usernames[i])
		}
		escaped[i] = url.PathEscape(name)
	}

	ep := apiEndpoint("findusers", "findusers/"+strings.Join(escaped, ","))
	records, err := s.requestRecords(ctx, ep, nil)
	if err != nil {
		return nil, err
	}

	matches := make([]UserMatch, 0, len(records))
	for _, rec := range records {
		uid, err := rec.Int("uid")
		if err != nil {
			// voobly reports unknown names with a blank uid
			continue
		}
		matches = append(matches, UserMatch{
			ID:   UserID(uid),
			Name: rec["display_name"],
		})
	}
	return matches, nil
}

// GetUser fetches a profile. A username is first resolved with FindUser.
func (s *Session) GetUser(ctx context.Context, ref UserRef) (*Profile, error) {
	uid := ref.id
	if ref.name != "" {
		var err error
		uid, err = s.FindUser(ctx, ref.name)
		if err != nil {
			return nil, err
		}
	}
	if uid <= 0 {
		return nil, validationErrorf("invalid user id %d", uid)
	}

	ep := apiEndpoint("user", fmt.Sprintf("user/%d", uid))
	records, err := s.requestRecords(ctx, ep, nil)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, newError(KindNotFound, ep, "user id not found", nil, nil)
	}

	rec := records[0]
	return &Profile{
		ID:      UserID(rec.intOr("uid", int(uid))),
		Name:    rec["display_name"],
		Nation:  rec["nation"],
		Tagline: rec["tagline"],
		Raw:     rec,
	}, nil
}

// UserSummary combines a profile with the user's standing on some ladders.
type UserSummary struct {
	Profile
	// Ladders only contains ladders the user is ranked on.
	Ladders map[LadderID]LadderEntry
}

// User gathers everything known about username: the profile and, for each
// of ladders, the user's ladder entry. Ladders the user is not ranked on are
// left out rather than reported as errors.
func (s *Session) User(ctx context.Context, username string,
	ladders ...LadderRef) (*UserSummary, error) {

	ladderIDs := make([]LadderID, len(ladders))
	for i, ladder := range ladders {
		id, err := ladder.resolve()
		if err != nil {
			return nil, err
		}
		ladderIDs[i] = id
	}

	uid, err := s.FindUser(ctx, username)
	if err != nil {
		return nil, err
	}
	profile, err := s.GetUser(ctx, ByID(uid))
	if err != nil {
		return nil, err
	}

	summary := &UserSummary{
		Profile: *profile,
		Ladders: make(map[LadderID]LadderEntry),
	}
	for _, id := range ladderIDs {
		entry, err := s.GetLadderEntry(ctx, Ladder(id), uid)
		if err != nil {
			if KindOf(err) == KindNotFound {
				continue
			}
			return nil, err
		}
		summary.Ladders[id] = *entry
	}
	return summary, nil
}

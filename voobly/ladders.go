/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// LadderResultLimit is the most rows voobly returns for one ladder request.
const LadderResultLimit = 40

type LadderID int

// LadderRef names a ladder by id or by a name known to LookupLadderID.
type LadderRef struct {
	id   LadderID
	name string
}

func Ladder(id LadderID) LadderRef {
	return LadderRef{id: id}
}

func LadderNamed(name string) LadderRef {
	return LadderRef{name: name}
}

func (r LadderRef) resolve() (LadderID, error) {
	if r.name != "" {
		return LookupLadderID(r.name)
	}
	if r.id <= 0 {
		return 0, validationErrorf("invalid ladder id %d", r.id)
	}
	return r.id, nil
}

// LadderQuery narrows a ladder request. The zero value asks for the first
// LadderResultLimit rows.
type LadderQuery struct {
	// UserID restricts the result to a single user.
	UserID UserID
	// UserIDs restricts the result to several users; it takes precedence over
	// UserID.
	UserIDs []UserID
	Start   int
	// Limit defaults to LadderResultLimit and may not exceed it.
	Limit int
}

// LadderEntry is one row of a ladder.
type LadderEntry struct {
	Rank   int
	UserID UserID
	Name   string
	Rating int
	Wins   int
	Losses int
	Streak int
	Raw    Record
}

// GetLadder fetches ladder rows.
//
// Ranks are assigned by voobly within the returned result set: a query
// restricted to some users ranks those users among themselves, not on the
// whole ladder.
func (s *Session) GetLadder(ctx context.Context, ref LadderRef,
	q LadderQuery) ([]LadderEntry, error) {

	id, err := ref.resolve()
	if err != nil {
		return nil, err
	}
	if q.Limit == 0 {
		q.Limit = LadderResultLimit
	}
	if q.Limit < 0 || q.Limit > LadderResultLimit {
		return nil, validationErrorf("limit must be between 1 and %d",
			LadderResultLimit)
	}
	if q.Start < 0 {
		return nil, validationErrorf("start must not be negative")
	}

	params := url.Values{
		"start": {strconv.Itoa(q.Start)},
		"limit": {strconv.Itoa(q.Limit)},
	}
	if len(q.UserIDs) > 0 {
		ids := make([]string, len(q.UserIDs))
		for i, uid := range q.UserIDs {
			ids[i] = strconv.Itoa(int(uid))
		}
		params.Set("uidlist", strings.Join(ids, ","))
	} else if q.UserID > 0 {
		params.Set("uid", strconv.Itoa(int(q.UserID)))
	}

	ep := apiEndpoint("ladder", fmt.Sprintf("ladder/%d", id))
	records, err := s.requestRecords(ctx, ep, params)
	if err != nil {
		return nil, err
	}

	entries := make([]LadderEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, LadderEntry{
			Rank:   rec.intOr("rank", 0),
			UserID: UserID(rec.intOr("uid", 0)),
			Name:   rec["display_name"],
			Rating: rec.intOr("rating", 0),
			Wins:   rec.intOr("wins", 0),
			Losses: rec.intOr("losses", 0),
			Streak: rec.intOr("streak", 0),
			Raw:    rec,
		})
	}
	return entries, nil
}

// GetLadderEntry returns uid's row on a ladder, failing with NOT_FOUND if the
// user is not ranked there.
func (s *Session) GetLadderEntry(ctx context.Context, ref LadderRef,
	uid UserID) (*LadderEntry, error) {

	if uid <= 0 {
		return nil, validationErrorf("invalid user id %d", uid)
	}
	entries, err := s.GetLadder(ctx, ref, LadderQuery{UserID: uid})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		id, _ := ref.resolve()
		return nil, newError(KindNotFound,
			apiEndpoint("ladder", fmt.Sprintf("ladder/%d", id)),
			"user not ranked", nil, nil)
	}
	return &entries[0], nil
}

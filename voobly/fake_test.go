/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	testKey      = "ABC"
	testUser     = "alice"
	testPassword = "secret"
	testSession  = "tok123"
	testRecName  = "rec.20190312-221551.mgz"
)

var testUsers = map[string]int{
	"Alice": 123,
	"Bob":   456,
}

const testMatchPage = `<html><body>
<table>
<tr><td>Match Details</td></tr>
<tr><td>Date Played:</td><td>May 8, 2009 5:57:51 PM</td></tr>
</table>
<table class="players">
<tr>
 <td><div style="background-color: #0054A6; width: 10px;">&nbsp;</div></td>
 <td><img src="https://voobly.com/res/games/AOC/civs/12.png"></td>
 <td><a href="https://voobly.com/profile/view/123">Alice</a>
     <span>New Rating: <b>1650</b><br>Points: <b>12</b></span></td>
</tr>
<tr>
 <td><div style="background-color: #FF0000; width: 10px;">&nbsp;</div></td>
 <td><img src="https://voobly.com/res/games/AOC/civs/1.png"></td>
 <td><a href="https://voobly.com/profile/view/456">Bob</a>
     <span>New Rating: <b>1588</b><br>Points: <b>-12</b></span></td>
</tr>
</table>
<a href="/files/view/50/rec1"><b>[CLAN]Alice</b></a>
<a href="/files/view/50/rec2"><b>Bob</b></a>
</body></html>`

const testRecordingsPage = `<html><body>
<div>Match: #1001</div><div>Match: #1001</div>
<div>Match: #1002</div>
</body></html>`

const testLoginForm = `<html><body>
<form action="/login/auth" method="post">
<input type="text" name="username"><input type="password" name="password">
</form></body></html>`

// fakeVoobly imitates the parts of voobly.com the client talks to and
// counts the requests it serves per path.
type fakeVoobly struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
	// busy makes every API call answer "too-busy"
	busy bool
	// broken makes every endpoint answer 200 with a body that does not parse
	broken bool
}

func newFakeVoobly(t *testing.T) *fakeVoobly {
	f := &fakeVoobly{hits: make(map[string]int)}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/", f.handleAPI)
	mux.HandleFunc("/login", f.handleLoginPage)
	mux.HandleFunc("/login/auth", f.handleLoginAuth)
	mux.HandleFunc("/match/view/", f.requireLogin(f.handleMatch))
	mux.HandleFunc("/recording/browse/", f.requireLogin(f.handleRecordings))
	mux.HandleFunc("/files/view/", f.requireLogin(f.handleRec))
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeVoobly) count(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[path]++
}

func (f *fakeVoobly) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeVoobly) TotalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.hits {
		n += c
	}
	return n
}

func (f *fakeVoobly) setBusy(busy bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = busy
}

func (f *fakeVoobly) isBusy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

func (f *fakeVoobly) setBroken(broken bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broken = broken
}

func (f *fakeVoobly) isBroken() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.broken
}

func (f *fakeVoobly) handleAPI(w http.ResponseWriter, r *http.Request) {
	f.count(r.URL.Path)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if f.isBusy() {
		fmt.Fprint(w, "too-busy")
		return
	}
	if r.URL.Query().Get("key") != testKey {
		fmt.Fprint(w, "bad-key")
		return
	}
	if f.isBroken() {
		fmt.Fprint(w, "a,b\n1,2,3\n")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/")
	switch {
	case rest == "validate":
		fmt.Fprint(w, "valid-key")
	case strings.HasPrefix(rest, "finduser/"):
		name := strings.TrimPrefix(rest, "finduser/")
		fmt.Fprint(w, "uid,display_name\n")
		if uid, ok := testUsers[name]; ok {
			fmt.Fprintf(w, "%d,%v\n", uid, name)
		}
	case strings.HasPrefix(rest, "findusers/"):
		fmt.Fprint(w, "uid,display_name\n")
		for _, name := range strings.Split(strings.TrimPrefix(rest, "findusers/"), ",") {
			if uid, ok := testUsers[name]; ok {
				fmt.Fprintf(w, "%d,%v\n", uid, name)
			} else {
				fmt.Fprintf(w, ",%v\n", name)
			}
		}
	case strings.HasPrefix(rest, "user/"):
		fmt.Fprint(w, "uid,display_name,nation,tagline\n")
		switch strings.TrimPrefix(rest, "user/") {
		case "123":
			fmt.Fprint(w, "123,Alice,Germany,\"hi, there\"\n")
		case "456":
			fmt.Fprint(w, "456,Bob,France,\n")
		}
	case rest == "ladder/131":
		f.writeLadder(w, r)
	case strings.HasPrefix(rest, "ladder/"):
		fmt.Fprint(w, "rank,uid,display_name,rating,wins,losses,streak\n")
	case rest == "lobbies/13":
		fmt.Fprint(w, "lobbyid,name,players_online,max_players,ladders\n")
		fmt.Fprint(w, "1,Newbie Lobby,100,500,131|132|\n")
		fmt.Fprint(w, "2,Ranked Lobby,50,500,132|163|\n")
		fmt.Fprint(w, "3,Chat Lobby,5,100,\n")
	case rest == "garbage":
		fmt.Fprint(w, "a,b\n1,2,3\n")
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeVoobly) writeLadder(w http.ResponseWriter, r *http.Request) {
	rows := map[string]string{
		"123": "1,123,Alice,1650,10,2,3",
		"456": "2,456,Bob,1588,5,5,-1",
	}
	fmt.Fprint(w, "rank,uid,display_name,rating,wins,losses,streak\n")
	q := r.URL.Query()
	switch {
	case q.Get("uidlist") != "":
		rank := 1
		for _, uid := range strings.Split(q.Get("uidlist"), ",") {
			if row, ok := rows[uid]; ok {
				// ranks are local to the result set
				_, rest, _ := strings.Cut(row, ",")
				fmt.Fprintf(w, "%d,%v\n", rank, rest)
				rank++
			}
		}
	case q.Get("uid") != "":
		if row, ok := rows[q.Get("uid")]; ok {
			fmt.Fprintln(w, row)
		}
	default:
		fmt.Fprintln(w, rows["123"])
		fmt.Fprintln(w, rows["456"])
	}
}

func (f *fakeVoobly) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	f.count(r.URL.Path)
	http.SetCookie(w, &http.Cookie{Name: "pre", Value: "1", Path: "/"})
	fmt.Fprint(w, testLoginForm)
}

func (f *fakeVoobly) handleLoginAuth(w http.ResponseWriter, r *http.Request) {
	f.count(r.URL.Path)
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("username") != testUser ||
		r.PostForm.Get("password") != testPassword {

		fmt.Fprint(w, testLoginForm)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "sid", Value: testSession, Path: "/"})
	fmt.Fprint(w, "<html><body>Welcome back</body></html>")
}

func (f *fakeVoobly) requireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.count(r.URL.Path)
		c, err := r.Cookie("sid")
		if err != nil || c.Value != testSession {
			fmt.Fprint(w, "<html><body><h1>Page Access Failed</h1></body></html>")
			return
		}
		next(w, r)
	}
}

func (f *fakeVoobly) handleMatch(w http.ResponseWriter, r *http.Request) {
	if f.isBroken() {
		fmt.Fprint(w, "<html><body><table><tr><td>Match Details</td></tr></table></body></html>")
		return
	}
	switch strings.TrimPrefix(r.URL.Path, "/match/view/") {
	case "1001", "1002":
		fmt.Fprint(w, testMatchPage)
	default:
		fmt.Fprint(w, "<html><body><h1>Page Not Found</h1></body></html>")
	}
}

func (f *fakeVoobly) handleRecordings(w http.ResponseWriter, r *http.Request) {
	if strings.TrimPrefix(r.URL.Path, "/recording/browse/") != "123" {
		fmt.Fprint(w, "<html><body>No recordings</body></html>")
		return
	}
	fmt.Fprint(w, testRecordingsPage)
}

func (f *fakeVoobly) handleRec(w http.ResponseWriter, r *http.Request) {
	if f.isBroken() {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("truncated"))
		return
	}
	switch r.URL.Path {
	case "/files/view/50/rec1", "/files/view/50/rec2":
		w.Header().Set("Content-Type", "application/zip")
		w.Write(testRecZip())
	case "/files/view/50/notzip":
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("definitely not a zip"))
	default:
		http.NotFound(w, r)
	}
}

func testRecZip() []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.Create(testRecName)
	if err != nil {
		panic(err)
	}
	fw.Write([]byte("recorded game bytes"))
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testSessionFor(t *testing.T, f *fakeVoobly, creds Credentials,
	opts ...Option) *Session {

	t.Helper()
	opts = append([]Option{WithBaseURL(f.URL)}, opts...)
	s, err := GetSession(context.Background(), creds, opts...)
	if err != nil {
		t.Fatalf("GetSession returned error: %v", err)
	}
	return s
}

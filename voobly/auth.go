/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/mikeb26/voobly/internal"
)

const (
	loginPagePath = "/login"
	loginAuthPath = "/login/auth"
)

var (
	loginEndpoint    = webEndpoint("login", loginAuthPath)
	validateEndpoint = apiEndpoint("validate", "validate")
)

// GetSession establishes a Session. An API key is stored without any network
// round trip; its validity surfaces on first use or through ValidateKey. A
// username and password are exchanged for a web login immediately, and a
// failed login returns no Session at all.
func GetSession(ctx context.Context, creds Credentials,
	opts ...Option) (*Session, error) {

	if creds.Key == "" && creds.Username == "" && creds.Password == "" {
		return nil, validationErrorf("must supply an api key or a username and password")
	}
	if (creds.Username == "") != (creds.Password == "") {
		return nil, validationErrorf("must supply both username and password")
	}

	s := newSession(opts...)
	if creds.Key != "" {
		s.apiKey = &apiKeyAuth{key: creds.Key}
	}
	if creds.Username != "" {
		web, err := s.login(ctx, creds.Username, creds.Password)
		if err != nil {
			return nil, err
		}
		s.web = web
	}

	return s, nil
}

// Relogin performs a fresh web login with the session's username and
// password and returns a new Session sharing the same cache store. Use it
// after a request fails with an AUTH error because the login expired.
func (s *Session) Relogin(ctx context.Context) (*Session, error) {
	if s.web == nil {
		return nil, newError(KindAuth, loginEndpoint,
			"session has no username and password", nil, nil)
	}
	web, err := s.login(ctx, s.web.username, s.web.password)
	if err != nil {
		return nil, err
	}
	ns := s.clone()
	ns.web = web
	return ns, nil
}

// ValidateKey asks voobly whether the session's API key is accepted. A
// rejected key yields false without an error; any other failure is returned.
func (s *Session) ValidateKey(ctx context.Context) (bool, error) {
	resp, err := s.Request(ctx, validateEndpoint, nil, NoCache())
	if err != nil {
		if KindOf(err) == KindAuth {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(string(resp.Body)) == apiValidKey, nil
}

func (s *Session) login(ctx context.Context, username string,
	password string) (*webAuth, error) {

	jar, err := internal.NewCookieJar()
	if err != nil {
		return nil, newError(KindAuth, loginEndpoint, "creating cookie jar", nil, err)
	}
	client := &http.Client{
		Transport: s.httpClient.Transport,
		Timeout:   s.httpClient.Timeout,
		Jar:       jar,
	}

	// the login page hands out the pre-login cookies the form post expects
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+loginPagePath, nil)
	if err != nil {
		return nil, newError(KindAuth, loginEndpoint, "building request", nil, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, loginEndpoint, "fetching login page", nil, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	form := url.Values{
		"username": {username},
		"password": {password},
	}
	req, err = http.NewRequestWithContext(ctx, "POST", s.baseURL+loginAuthPath,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, newError(KindAuth, loginEndpoint, "building request", nil, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	log.Printf("voobly.login: logging in as %v", username)
	resp, err = client.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, loginEndpoint, "posting credentials", nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindNetwork, loginEndpoint, "reading login response", nil, err)
	}
	if resp.StatusCode >= 500 {
		return nil, newError(KindNetwork, loginEndpoint,
			fmt.Sprintf("login failed with status %d", resp.StatusCode), body, nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newError(KindAuth, loginEndpoint,
			fmt.Sprintf("login failed with status %d", resp.StatusCode), body, nil)
	}
	if loginRejected(body) {
		return nil, newError(KindAuth, loginEndpoint,
			"username or password not accepted", body, nil)
	}

	site, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, newError(KindAuth, loginEndpoint, "parsing base url", nil, err)
	}
	cookies := jar.Cookies(site)
	if len(cookies) == 0 {
		return nil, newError(KindAuth, loginEndpoint, "login returned no session cookie",
			body, nil)
	}

	return &webAuth{
		username: username,
		password: password,
		cookies:  cookies,
	}, nil
}

/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"testing"
)

func TestClassify(t *testing.T) {
	api := apiEndpoint("ladder", "ladder/131")
	web := webEndpoint("match", "/match/view/1")

	tests := []struct {
		name        string
		ep          Endpoint
		status      int
		contentType string
		body        string
		want        Kind
	}{
		{"api ok", api, 200, "text/plain", "uid\n1\n", 0},
		{"api 429", api, 429, "", "slow down", KindRateLimit},
		{"api 401", api, 401, "", "", KindAuth},
		{"api 403", api, 403, "", "", KindAuth},
		{"api 404", api, 404, "", "", KindNotFound},
		{"api 500", api, 500, "", "", KindBadResponse},
		{"api 302", api, 302, "", "", KindBadResponse},
		{"bad key", api, 200, "text/plain", "bad-key\n", KindAuth},
		{"too busy", api, 200, "text/plain", " too-busy ", KindRateLimit},
		{"empty", api, 200, "text/plain", "  \n", KindBadResponse},
		{"valid key", api, 200, "text/plain", "valid-key", 0},
		{"web ok", web, 200, "text/html", "<html>ok</html>", 0},
		{"access failed", web, 200, "text/html; charset=utf-8",
			"<h1>Page Access Failed</h1>", KindAuth},
		{"page not found", web, 200, "", "<h1>Page Not Found</h1>", KindNotFound},
		{"binary with marker", web, 200, "application/zip",
			"PK...Page Not Found...", 0},
		{"web 404", web, 404, "text/html", "", KindNotFound},
		{"web 503", web, 503, "text/html", "", KindBadResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.ep, tt.status, tt.contentType, []byte(tt.body))
			if tt.want == 0 {
				if err != nil {
					t.Errorf("expected success, got %v", err)
				}
				return
			}
			if KindOf(err) != tt.want {
				t.Errorf("classify = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestLoginRejectedPage(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{testLoginForm, true},
		{"<h1>Page Access Failed</h1>", true},
		{"<html><body>Welcome back</body></html>", false},
	}
	for _, tt := range tests {
		if got := loginRejected([]byte(tt.body)); got != tt.want {
			t.Errorf("loginRejected(%q) = %v; want %v", tt.body, got, tt.want)
		}
	}
}

/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"context"
	"errors"
	"testing"
)

func TestDecodeRecords(t *testing.T) {
	ep := apiEndpoint("user", "user/1")
	body := "uid,display_name,tagline\n1, Alice,\"a, quoted\"\n2,Bob,\n"

	records, err := decodeRecords(ep, []byte(body))
	if err != nil {
		t.Fatalf("decodeRecords returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %v", len(records))
	}
	if records[0]["display_name"] != "Alice" || records[0]["tagline"] != "a, quoted" {
		t.Errorf("unexpected record %v", records[0])
	}
	if uid, err := records[1].Int("uid"); err != nil || uid != 2 {
		t.Errorf("Int(uid) = %v, %v; want 2", uid, err)
	}
	if _, err := records[1].Int("tagline"); err == nil {
		t.Errorf("expected error for blank integer field")
	}
	if got := records[1].intOr("missing", 7); got != 7 {
		t.Errorf("intOr default = %v; want 7", got)
	}
}

func TestDecodeRecordsHeaderOnly(t *testing.T) {
	records, err := decodeRecords(apiEndpoint("ladder", "ladder/1"),
		[]byte("rank,uid\n"))
	if err != nil || len(records) != 0 {
		t.Errorf("decodeRecords = %v, %v; want no records", records, err)
	}
}

func TestRaggedResponseIsBadResponse(t *testing.T) {
	f := newFakeVoobly(t)
	s := testSessionFor(t, f, Credentials{Key: testKey})

	_, err := s.requestRecords(context.Background(),
		apiEndpoint("garbage", "garbage"), nil)
	if !errors.Is(err, ErrBadResponse) {
		t.Errorf("expected BAD_RESPONSE, got %v", err)
	}
}

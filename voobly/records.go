/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package voobly

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// Record is one row of a voobly API response, keyed by column name.
type Record map[string]string

// Int parses field as an integer; missing or blank fields are an error.
func (r Record) Int(field string) (int, error) {
	v, ok := r[field]
	if !ok {
		return 0, errors.New("missing field " + field)
	}
	return strconv.Atoi(strings.TrimSpace(v))
}

// intOr returns field as an integer, or def if it is absent or malformed.
func (r Record) intOr(field string, def int) int {
	n, err := r.Int(field)
	if err != nil {
		return def
	}
	return n
}

// decodeRecords parses the CSV body (header line first) the data API
// returns. A header with no rows yields an empty slice.
func decodeRecords(ep Endpoint, body []byte) ([]Record, error) {
	rdr := csv.NewReader(bytes.NewReader(body))
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true
	rdr.TrimLeadingSpace = true

	header, err := rdr.Read()
	if err != nil {
		return nil, newError(KindBadResponse, ep, "unexpected response", body, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []Record
	for {
		row, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newError(KindBadResponse, ep, "unexpected response", body, err)
		}
		if len(row) != len(header) {
			return nil, newError(KindBadResponse, ep, "unexpected response: ragged row",
				body, nil)
		}
		rec := make(Record, len(header))
		for i, col := range header {
			rec[col] = row[i]
		}
		records = append(records, rec)
	}

	return records, nil
}

// requestRecords issues an API request and decodes its CSV body.
func (s *Session) requestRecords(ctx context.Context, ep Endpoint,
	params url.Values) ([]Record, error) {

	var records []Record
	_, err := s.Request(ctx, ep, params, WithDecoder(func(body []byte) error {
		var err error
		records, err = decodeRecords(ep, body)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return records, nil
}

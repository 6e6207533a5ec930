// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"
)

// candidateSeparators are tried in order when inferring a file's field
// separator from its first data line.
var candidateSeparators = []string{"|", ";", "\t"}

// dateLayouts are tried in order when parsing transaction dates. The
// first is the documented format; the rest are accepted on ingest as an
// inference fallback.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02-01-2006",
}

// parseResult is the outcome of reading one transaction file.
type parseResult struct {
	Transactions []Transaction
	DroppedRows  int
}

// parseTransactionsFile reads one field-delimited transaction file.
//
// The separator and column count are inferred from the first data line;
// a separator that cannot be inferred or a column count outside {3, 4}
// is a *FormatError for the whole file. Rows that later fail to parse
// (bad date, wrong field count) are dropped individually and counted.
func parseTransactionsFile(path string) (*parseResult, error) {
	f, err := os.Open(path) //nolint:gosec // path enumerated from the configured dataset dir
	if err != nil {
		return nil, &FormatError{File: path, Reason: fmt.Sprintf("unreadable: %v", err)}
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	res := &parseResult{}
	sep := ""
	columns := 0
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if sep == "" {
			sep, columns, err = inferShape(path, line)
			if err != nil {
				return nil, err
			}
		}

		fields := strings.Split(line, sep)
		if len(fields) != columns {
			res.DroppedRows++
			continue
		}

		date, err := parseDate(path, lineNo, fields[0])
		if err != nil {
			// Row-level: drop and continue.
			res.DroppedRows++
			continue
		}

		tx := Transaction{
			Date:       date,
			StoreID:    canonicalKey(fields[1]),
			CustomerID: canonicalKey(fields[2]),
		}
		if columns == 4 {
			tx.Items = strings.Fields(fields[3])
		}
		res.Transactions = append(res.Transactions, tx)
	}

	if err := scanner.Err(); err != nil {
		return nil, &FormatError{File: path, Reason: fmt.Sprintf("read failed: %v", err)}
	}
	if sep == "" {
		return nil, &FormatError{File: path, Reason: "file contains no data rows"}
	}

	return res, nil
}

// inferShape determines separator and column count from the first data
// line. Column counts outside {3, 4} reject the file.
func inferShape(path, line string) (sep string, columns int, err error) {
	for _, cand := range candidateSeparators {
		n := strings.Count(line, cand)
		if n == 0 {
			continue
		}
		cols := n + 1
		if cols != 3 && cols != 4 {
			return "", 0, &FormatError{
				File:   path,
				Reason: fmt.Sprintf("%d columns with separator %q, accepted column counts are 3 or 4", cols, cand),
			}
		}
		return cand, cols, nil
	}
	return "", 0, &FormatError{File: path, Reason: "cannot infer field separator"}
}

// parseDate parses a transaction date and normalizes it to midnight UTC.
// Failures are *DateParseError so callers can tell row-level drops apart
// from file-level format problems.
func parseDate(file string, line int, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, &DateParseError{File: file, Line: line, Value: s}
}

// canonicalKey normalizes a store or customer identifier to its canonical
// string form. Whitespace is trimmed and a redundant ".0" decimal suffix,
// an artifact of sources that exported numeric IDs as floats, is removed
// so the same entity joins consistently across files.
func canonicalKey(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i > 0 {
		integral, frac := s[:i], s[i+1:]
		if isDigits(integral) && isZeros(frac) {
			return integral
		}
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isZeros(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			return false
		}
	}
	return true
}

// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package feed

import (
	"encoding/base64"
	"errors"
	"strconv"
)

// ErrInvalidPageToken signals a malformed or negative page token.
// Surfaces to clients as 400 {"error":"Invalid page token"}.
var ErrInvalidPageToken = errors.New("invalid page token")

// EncodePageToken encodes an offset as base64 of its decimal string.
func EncodePageToken(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

// DecodePageToken decodes a page token back to an offset. An empty
// token is offset 0; non-numeric or negative tokens are invalid.
func DecodePageToken(token string) (int, error) {
	if token == "" {
		return 0, nil
	}
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return 0, ErrInvalidPageToken
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}
	return offset, nil
}

// Paginate slices items at [offset, offset+pageSize) and returns the
// page plus the next token, empty when the page exhausts the set.
func Paginate[T any](items []T, offset, pageSize int) ([]T, string) {
	if offset >= len(items) {
		return nil, ""
	}
	end := offset + pageSize
	if end >= len(items) {
		return items[offset:], ""
	}
	return items[offset:end], EncodePageToken(end)
}

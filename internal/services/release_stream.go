package services

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrSkipRelease marks an element that is not decodable as a release object.
// The stream stays usable after it.
var ErrSkipRelease = errors.New("release element not decodable")

// ReleaseReader streams top-level release objects out of a payload document
// without holding the whole document in memory. The document is either
// {"records": [...]} or a bare array; the named wrapper is tried first.
type ReleaseReader struct {
	dec *json.Decoder
}

func NewReleaseReader(r io.Reader) (*ReleaseReader, error) {
	if r == nil {
		return nil, errors.New("reader is nil")
	}

	dec := json.NewDecoder(bufio.NewReaderSize(r, 1<<16))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read document start: %w", err)
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, fmt.Errorf("unexpected document start token %v", tok)
	}

	switch delim {
	case '[':
		return &ReleaseReader{dec: dec}, nil
	case '{':
		if err := seekRecordsArray(dec); err != nil {
			return nil, err
		}
		return &ReleaseReader{dec: dec}, nil
	default:
		return nil, fmt.Errorf("unexpected document delimiter %v", delim)
	}
}

func seekRecordsArray(dec *json.Decoder) error {
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("read object key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key token %v", keyTok)
		}

		if key == "records" {
			openTok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("read records start: %w", err)
			}
			if delim, ok := openTok.(json.Delim); !ok || delim != '[' {
				return fmt.Errorf("records is not an array")
			}
			return nil
		}

		var skipped json.RawMessage
		if err := dec.Decode(&skipped); err != nil {
			return fmt.Errorf("skip key %q: %w", key, err)
		}
	}

	return errors.New("document has no records array")
}

// Next returns the next release, io.EOF when the sequence is exhausted, or an
// error wrapping ErrSkipRelease when one element is malformed but the stream
// can continue.
func (r *ReleaseReader) Next() (Release, error) {
	if r == nil || r.dec == nil {
		return Release{}, errors.New("release reader is nil")
	}

	if !r.dec.More() {
		return Release{}, io.EOF
	}

	var raw json.RawMessage
	if err := r.dec.Decode(&raw); err != nil {
		return Release{}, fmt.Errorf("read release element: %w", err)
	}

	var release Release
	if err := json.Unmarshal(raw, &release); err != nil {
		return Release{}, fmt.Errorf("%w: %v", ErrSkipRelease, err)
	}

	return release, nil
}

package router

import (
	"errors"
	"net/url"
	"strings"
)

// Path errors.
var (
	ErrBackslashInPath      = errors.New("router: path contains backslash")
	ErrNullByteInPath       = errors.New("router: path contains null byte")
	ErrInvalidPercentEscape = errors.New("router: invalid percent escape")
	ErrPathEscapesRoot      = errors.New("router: path escapes root")
	ErrAbsoluteURL          = errors.New("router: navigation URL must be a relative path")
)

// Location is a parsed navigation URL.
type Location struct {
	// Path is canonical: rooted, no empty or dot segments, no trailing
	// slash except for "/".
	Path  string
	Query url.Values
	Hash  string
}

// String reassembles the location.
func (l Location) String() string {
	s := l.Path
	if q := l.Query.Encode(); q != "" {
		s += "?" + q
	}
	if l.Hash != "" {
		s += "#" + l.Hash
	}
	return s
}

// ParseLocation splits raw into path, query and fragment and canonicalizes
// the path. Absolute and protocol-relative URLs are rejected.
func ParseLocation(raw string) (Location, error) {
	if strings.HasPrefix(raw, "//") || strings.Contains(raw, "://") {
		return Location{}, ErrAbsoluteURL
	}
	rest, hash, _ := strings.Cut(raw, "#")
	p, rawQuery, _ := strings.Cut(rest, "?")
	p, err := Canonicalize(p)
	if err != nil {
		return Location{}, err
	}
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Location{}, err
	}
	return Location{Path: p, Query: q, Hash: hash}, nil
}

// Canonicalize normalizes a URL path: it collapses repeated slashes,
// resolves "." and ".." segments and drops the trailing slash.
func Canonicalize(p string) (string, error) {
	if strings.Contains(p, `\`) {
		return "", ErrBackslashInPath
	}
	if strings.Contains(p, "\x00") || strings.Contains(strings.ToUpper(p), "%00") {
		return "", ErrNullByteInPath
	}
	if strings.Contains(p, "%") {
		if _, err := url.PathUnescape(p); err != nil {
			return "", ErrInvalidPercentEscape
		}
	}

	var segs []string
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(segs) == 0 {
				return "", ErrPathEscapesRoot
			}
			segs = segs[:len(segs)-1]
		default:
			segs = append(segs, seg)
		}
	}
	return "/" + strings.Join(segs, "/"), nil
}

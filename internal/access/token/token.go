// Package token decodes and encodes content request tokens.
//
// The grammar has four forms:
//
//	video_<package_id>          view a package synopsis
//	play_video_<package_id>     play a package
//	serie_<series_id>           view a series synopsis
//	cap_<series_id>_<index>     play chapter <index> of a series
//
// Resolve is purely syntactic; it never checks that the target exists.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedToken is returned when a token matches none of the forms.
var ErrMalformedToken = errors.New("malformed token")

const (
	prefixPlayVideo = "play_video_"
	prefixVideo     = "video_"
	prefixSeries    = "serie_"
	prefixChapter   = "cap_"
)

// Action is the decoded intent kind.
type Action string

const (
	ActionViewPackage Action = "view_package"
	ActionPlayPackage Action = "play_package"
	ActionViewSeries  Action = "view_series"
	ActionPlayChapter Action = "play_chapter"
)

// Delivers reports whether the action hands over a playable unit and
// therefore consumes quota.
func (a Action) Delivers() bool {
	return a == ActionPlayPackage || a == ActionPlayChapter
}

// Intent is a decoded token. Index is only meaningful for ActionPlayChapter.
type Intent struct {
	Action   Action `json:"action"`
	TargetID string `json:"target_id"`
	Index    int    `json:"index,omitempty"`
}

// String re-encodes the intent.
func (i Intent) String() string {
	switch i.Action {
	case ActionViewPackage:
		return ViewPackage(i.TargetID)
	case ActionPlayPackage:
		return PlayPackage(i.TargetID)
	case ActionViewSeries:
		return ViewSeries(i.TargetID)
	case ActionPlayChapter:
		return PlayChapter(i.TargetID, i.Index)
	default:
		return ""
	}
}

// Resolve decodes a token. Prefixes are tried longest-first so that
// play_video_ is never read as a video_ token.
func Resolve(token string) (Intent, error) {
	switch {
	case strings.HasPrefix(token, prefixPlayVideo):
		return withID(ActionPlayPackage, token, strings.TrimPrefix(token, prefixPlayVideo))
	case strings.HasPrefix(token, prefixVideo):
		return withID(ActionViewPackage, token, strings.TrimPrefix(token, prefixVideo))
	case strings.HasPrefix(token, prefixSeries):
		return withID(ActionViewSeries, token, strings.TrimPrefix(token, prefixSeries))
	case strings.HasPrefix(token, prefixChapter):
		return resolveChapter(token, strings.TrimPrefix(token, prefixChapter))
	default:
		return Intent{}, malformed(token, "unknown prefix")
	}
}

func withID(action Action, token, id string) (Intent, error) {
	if id == "" {
		return Intent{}, malformed(token, "empty id")
	}
	return Intent{Action: action, TargetID: id}, nil
}

// resolveChapter splits on the last underscore, so series ids may contain
// underscores themselves.
func resolveChapter(token, rest string) (Intent, error) {
	sep := strings.LastIndexByte(rest, '_')
	if sep < 0 {
		return Intent{}, malformed(token, "missing chapter index")
	}
	id, rawIndex := rest[:sep], rest[sep+1:]
	if id == "" {
		return Intent{}, malformed(token, "empty id")
	}
	index, ok := parseIndex(rawIndex)
	if !ok {
		return Intent{}, malformed(token, "chapter index is not an integer")
	}
	return Intent{Action: ActionPlayChapter, TargetID: id, Index: index}, nil
}

// parseIndex accepts an optional leading minus and decimal digits. Values
// beyond the int range clamp to its bounds; range checks belong to the
// catalog, which reports them as out of range.
func parseIndex(s string) (int, bool) {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 0)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return int(n), true
}

func malformed(token, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrMalformedToken, token, reason)
}

// ViewPackage encodes a package synopsis token.
func ViewPackage(packageID string) string {
	return prefixVideo + packageID
}

// PlayPackage encodes a package play token.
func PlayPackage(packageID string) string {
	return prefixPlayVideo + packageID
}

// ViewSeries encodes a series synopsis token.
func ViewSeries(seriesID string) string {
	return prefixSeries + seriesID
}

// PlayChapter encodes a chapter play token.
func PlayChapter(seriesID string, index int) string {
	return prefixChapter + seriesID + "_" + strconv.Itoa(index)
}

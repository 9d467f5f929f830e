package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NoteKind classifies a package's special-handling directive.
type NoteKind int

const (
	NoteNone NoteKind = iota
	NoteOnTruck
	NoteWrongAddress
	NoteDeliveredWith
	NoteDelayed
	// NoteOther is free text that matched no known directive.
	NoteOther
)

func (k NoteKind) String() string {
	switch k {
	case NoteNone:
		return "none"
	case NoteOnTruck:
		return "on_truck"
	case NoteWrongAddress:
		return "wrong_address"
	case NoteDeliveredWith:
		return "delivered_with"
	case NoteDelayed:
		return "delayed"
	default:
		return "other"
	}
}

// Note is the parsed form of a package's notes column.
type Note struct {
	Kind  NoteKind
	Raw   string
	Truck int       // NoteOnTruck
	With  []int     // NoteDeliveredWith
	Until TimeOfDay // NoteDelayed
}

var (
	onTruckRe       = regexp.MustCompile(`(?i)\bon\s+truck\s+(\S+)`)
	wrongAddressRe  = regexp.MustCompile(`(?i)\bwrong\s+address\b`)
	deliveredWithRe = regexp.MustCompile(`(?i)\bdelivered\s+with\s+(.+)$`)
	delayedRe       = regexp.MustCompile(`(?i)\bdelayed\b`)
	untilRe         = regexp.MustCompile(`(?i)\buntil\s+(\d{1,2}:\d{2}(?::\d{2})?(?:\s*[ap]\.?m\.?)?)`)
	idSeparatorRe   = regexp.MustCompile(`(?i)\s*(?:,|\band\b|&|\s)\s*`)
)

// ParseNote classifies raw note text. Empty text is NoteNone; unrecognized
// text is NoteOther.
func ParseNote(raw string) (Note, error) {
	text := strings.TrimSpace(raw)
	n := Note{Raw: text, Until: NotYet}
	if text == "" {
		return n, nil
	}

	switch {
	case onTruckRe.MatchString(text):
		m := onTruckRe.FindStringSubmatch(text)
		id, err := strconv.Atoi(strings.Trim(m[1], ".,;"))
		if err != nil || id <= 0 {
			return Note{}, fmt.Errorf("parse note %q: truck number %q: %w", text, m[1], ErrInvalidNote)
		}
		n.Kind = NoteOnTruck
		n.Truck = id

	case wrongAddressRe.MatchString(text):
		n.Kind = NoteWrongAddress

	case deliveredWithRe.MatchString(text):
		m := deliveredWithRe.FindStringSubmatch(text)
		ids, err := parseIDList(m[1])
		if err != nil {
			return Note{}, fmt.Errorf("parse note %q: %w", text, err)
		}
		n.Kind = NoteDeliveredWith
		n.With = ids

	case delayedRe.MatchString(text):
		m := untilRe.FindStringSubmatch(text)
		if m == nil {
			return Note{}, fmt.Errorf("parse note %q: delayed without arrival time: %w", text, ErrInvalidNote)
		}
		until, err := ParseClock(strings.ReplaceAll(m[1], ".", ""))
		if err != nil {
			return Note{}, fmt.Errorf("parse note %q: %v: %w", text, err, ErrInvalidNote)
		}
		n.Kind = NoteDelayed
		n.Until = until

	default:
		n.Kind = NoteOther
	}

	return n, nil
}

func parseIDList(s string) ([]int, error) {
	fields := idSeparatorRe.Split(strings.Trim(strings.TrimSpace(s), "."), -1)
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		id, err := strconv.Atoi(f)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("package id %q: %w", f, ErrInvalidNote)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("empty package list: %w", ErrInvalidNote)
	}
	return ids, nil
}

// IsSpecial reports whether the note carries any directive at all.
func (n Note) IsSpecial() bool { return n.Kind != NoteNone }

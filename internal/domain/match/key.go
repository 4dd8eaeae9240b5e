package match

import (
	"fmt"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrUnknownRound    = crerr.New("unknown round kind")
	ErrUnparsableLabel = crerr.New("unparsable match label")
	ErrUnknownKeyShape = crerr.New("unknown match key shape")
)

// Sort-key segment counts for the two known encodings. The legacy forms
// predate the round/instance segments and are the sweeper's delete targets.
const (
	eventKeySegments       = 5 // MATCH#<div>#<round>#<inst>#<num>
	teamKeySegments        = 6 // MATCH#<sku>#<div>#<round>#<inst>#<num>
	legacyEventKeySegments = 3 // MATCH#<div>#<num>
	legacyTeamKeySegments  = 4 // MATCH#<sku>#<div>#<num>
)

const (
	EventPartitionPrefix = "EVENT#"
	TeamPartitionPrefix  = "TEAM#"
	MatchSortPrefix      = "MATCH#"
)

// EventSortKey encodes the event-owned sort key. Fixed-width zero padding
// keeps lexical order equal to bracket order within an event partition.
func EventSortKey(divisionID int, round Round, instance, number int) (string, error) {
	if !round.Known() {
		return "", crerr.Wrapf(ErrUnknownRound, "round code %d", int(round))
	}
	return fmt.Sprintf("MATCH#%d#%d#%02d#%04d", divisionID, int(round), instance, number), nil
}

// TeamSortKey encodes the team-owned sort key, the event form prefixed with
// the event SKU so one team partition spans every event it played.
func TeamSortKey(eventSKU string, divisionID int, round Round, instance, number int) (string, error) {
	if !round.Known() {
		return "", crerr.Wrapf(ErrUnknownRound, "round code %d", int(round))
	}
	if eventSKU == "" {
		return "", fmt.Errorf("event sku is required")
	}
	return fmt.Sprintf("MATCH#%s#%d#%d#%02d#%04d", eventSKU, divisionID, int(round), instance, number), nil
}

// EventPartitionKey returns the partition key owning an event's match records.
func EventPartitionKey(eventSKU string) string {
	return EventPartitionPrefix + eventSKU
}

// TeamPartitionKey returns the partition key owning a team's records.
func TeamPartitionKey(teamNumber string) string {
	return TeamPartitionPrefix + teamNumber
}

// KeyShape classifies a match sort key against the known encodings.
type KeyShape int

const (
	KeyShapeCurrent KeyShape = iota
	KeyShapeLegacy
)

// ClassifySortKey reports whether a match sort key uses the current or the
// legacy encoding, dispatching on the owning partition's kind.
func ClassifySortKey(partitionKey, sortKey string) (KeyShape, error) {
	if !strings.HasPrefix(sortKey, MatchSortPrefix) {
		return 0, crerr.Wrapf(ErrUnknownKeyShape, "sort key %q is not a match key", sortKey)
	}
	segments := len(strings.Split(sortKey, "#"))

	switch {
	case strings.HasPrefix(partitionKey, EventPartitionPrefix):
		switch segments {
		case eventKeySegments:
			return KeyShapeCurrent, nil
		case legacyEventKeySegments:
			return KeyShapeLegacy, nil
		}
	case strings.HasPrefix(partitionKey, TeamPartitionPrefix):
		switch segments {
		case teamKeySegments:
			return KeyShapeCurrent, nil
		case legacyTeamKeySegments:
			return KeyShapeLegacy, nil
		}
	default:
		return 0, crerr.Wrapf(ErrUnknownKeyShape, "partition key %q does not own match items", partitionKey)
	}
	return 0, crerr.Wrapf(ErrUnknownKeyShape, "sort key %q has %d segments", sortKey, segments)
}

var labelPrefixes = []struct {
	prefix string
	round  Round
}{
	// Longest prefixes first so QF does not parse as Q, R16/R32/R64 before nothing.
	{"QF", RoundQuarterfinal},
	{"SF", RoundSemifinal},
	{"R16", RoundOf16},
	{"R32", RoundOf32},
	{"R64", RoundOf64},
	{"Q", RoundQualification},
	{"P", RoundPractice},
	{"F", RoundFinal},
}

// ParseLabel recovers (round, instance, match number) from a free-text match
// label such as "Q12", "SF1-2" or "F1".
//
// Practice and Qualification labels carry only a match number. For
// elimination rounds a lone number is the instance (match 1), and a
// hyphen-separated pair is (instance, match number) — except the Final,
// whose first number is the match number with instance fixed at 1.
func ParseLabel(label string) (Round, int, int, error) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(label), " ", ""))
	if normalized == "" {
		return 0, 0, 0, crerr.Wrap(ErrUnparsableLabel, "empty label")
	}

	for _, candidate := range labelPrefixes {
		if !strings.HasPrefix(normalized, candidate.prefix) {
			continue
		}
		rest := strings.TrimPrefix(normalized, candidate.prefix)
		rest = strings.TrimPrefix(rest, "-")

		switch candidate.round {
		case RoundPractice, RoundQualification:
			number, err := strconv.Atoi(rest)
			if err != nil {
				return 0, 0, 0, crerr.Wrapf(ErrUnparsableLabel, "label %q", label)
			}
			return candidate.round, 1, number, nil
		default:
			instance, number, err := parseElimination(candidate.round, rest)
			if err != nil {
				return 0, 0, 0, crerr.Wrapf(ErrUnparsableLabel, "label %q", label)
			}
			return candidate.round, instance, number, nil
		}
	}

	return 0, 0, 0, crerr.Wrapf(ErrUnparsableLabel, "label %q", label)
}

func parseElimination(round Round, s string) (instance, number int, err error) {
	if first, second, found := strings.Cut(s, "-"); found {
		instance, err = strconv.Atoi(first)
		if err != nil {
			return 0, 0, err
		}
		number, err = strconv.Atoi(second)
		if err != nil {
			return 0, 0, err
		}
		return instance, number, nil
	}

	value, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, err
	}
	if round == RoundFinal {
		// F1, F2 are successive final matches of a single instance.
		return 1, value, nil
	}
	return value, 1, nil
}

// FormatLabel is the inverse of ParseLabel for known rounds.
func FormatLabel(round Round, instance, number int) (string, error) {
	var prefix string
	switch round {
	case RoundPractice:
		return fmt.Sprintf("P%d", number), nil
	case RoundQualification:
		return fmt.Sprintf("Q%d", number), nil
	case RoundQuarterfinal:
		prefix = "QF"
	case RoundSemifinal:
		prefix = "SF"
	case RoundFinal:
		return fmt.Sprintf("F%d", number), nil
	case RoundOf16:
		prefix = "R16-"
	case RoundOf32:
		prefix = "R32-"
	case RoundOf64:
		prefix = "R64-"
	default:
		return "", crerr.Wrapf(ErrUnknownRound, "round code %d", int(round))
	}
	if number == 1 {
		return fmt.Sprintf("%s%d", prefix, instance), nil
	}
	return fmt.Sprintf("%s%d-%d", prefix, instance, number), nil
}

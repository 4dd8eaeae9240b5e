package match

import "fmt"

// Round is the closed set of match round kinds used in composite sort keys.
type Round int

const (
	RoundPractice      Round = 1
	RoundQualification Round = 2
	RoundQuarterfinal  Round = 3
	RoundSemifinal     Round = 4
	RoundFinal         Round = 5
	RoundOf16          Round = 6
	RoundOf32          Round = 7
	RoundOf64          Round = 8
)

var roundNames = map[Round]string{
	RoundPractice:      "Practice",
	RoundQualification: "Qualification",
	RoundQuarterfinal:  "Quarterfinal",
	RoundSemifinal:     "Semifinal",
	RoundFinal:         "Final",
	RoundOf16:          "Round of 16",
	RoundOf32:          "Round of 32",
	RoundOf64:          "Round of 64",
}

func (r Round) String() string {
	if name, ok := roundNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Round %d", int(r))
}

func (r Round) Known() bool {
	_, ok := roundNames[r]
	return ok
}

// RoundFromCode maps the upstream numeric round code to a Round.
func RoundFromCode(code int) (Round, error) {
	r := Round(code)
	if !r.Known() {
		return 0, fmt.Errorf("round code %d: %w", code, ErrUnknownRound)
	}
	return r, nil
}

const (
	AllianceRed  = "red"
	AllianceBlue = "blue"
)

// Alliance is one scoring side of a match. Score stays nil until the match
// has been played.
type Alliance struct {
	Color string
	Teams []string
	Score *int
}

// Identity is the globally unique tuple naming one match.
type Identity struct {
	EventSKU   string
	DivisionID int
	Round      Round
	Instance   int
	Number     int
}

func (id Identity) Validate() error {
	if id.EventSKU == "" {
		return fmt.Errorf("match event sku is required")
	}
	if id.DivisionID <= 0 {
		return fmt.Errorf("match division id must be positive")
	}
	if !id.Round.Known() {
		return fmt.Errorf("match round %d: %w", int(id.Round), ErrUnknownRound)
	}
	if id.Number < 0 || id.Instance < 0 {
		return fmt.Errorf("match instance and number must not be negative")
	}
	return nil
}

// CanonicalMatch is one match as observed upstream, before denormalization.
type CanonicalMatch struct {
	Identity
	EventName string
	Field     string
	Scheduled string
	Started   string
	Red       Alliance
	Blue      Alliance
}

// Participants returns every team number in the match, red side first.
func (m CanonicalMatch) Participants() []string {
	out := make([]string, 0, len(m.Red.Teams)+len(m.Blue.Teams))
	out = append(out, m.Red.Teams...)
	out = append(out, m.Blue.Teams...)
	return out
}

// AllianceOf returns the alliance containing the team and the opposing one.
func (m CanonicalMatch) AllianceOf(teamNumber string) (own Alliance, opp Alliance, ok bool) {
	for _, t := range m.Red.Teams {
		if t == teamNumber {
			return m.Red, m.Blue, true
		}
	}
	for _, t := range m.Blue.Teams {
		if t == teamNumber {
			return m.Blue, m.Red, true
		}
	}
	return Alliance{}, Alliance{}, false
}

package team

import "fmt"

// Skills is a team's robot-skills standing for the season.
type Skills struct {
	Rank          int
	CombinedScore int
	Driver        int
	Programming   int
}

// Team is one tracked competition team. Number is the stable identity;
// ExternalID is the source API's numeric id and may be zero until the first
// successful lookup.
type Team struct {
	Number          string
	ExternalID      int64
	Name            string
	Organization    string
	City            string
	Region          string
	Country         string
	Grade           string
	Skills          Skills
	WorldsQualified bool
}

func (t Team) Validate() error {
	if t.Number == "" {
		return fmt.Errorf("team number is required")
	}
	if t.Skills.Rank < 0 {
		return fmt.Errorf("team skills rank must not be negative")
	}
	return nil
}

// LocationString joins the non-empty location parts for display.
func (t Team) LocationString() string {
	out := ""
	for _, part := range []string{t.City, t.Region, t.Country} {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}

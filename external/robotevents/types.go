package robotevents

import "github.com/intelicampusai/vex5hub-site/internal/usecase"

type pageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

type locationPayload struct {
	Venue   string `json:"venue"`
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
}

type divisionPayload struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type eventPayload struct {
	ID        int64             `json:"id"`
	SKU       string            `json:"sku"`
	Name      string            `json:"name"`
	Start     string            `json:"start"`
	End       string            `json:"end"`
	Level     string            `json:"level"`
	Location  locationPayload   `json:"location"`
	Divisions []divisionPayload `json:"divisions"`
}

type eventsEnvelope struct {
	Data []eventPayload `json:"data"`
	Meta pageMeta       `json:"meta"`
}

type teamPayload struct {
	ID     int64  `json:"id"`
	Number string `json:"number"`
}

type teamsEnvelope struct {
	Data []teamPayload `json:"data"`
	Meta pageMeta      `json:"meta"`
}

type allianceTeamPayload struct {
	Team struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
}

type alliancePayload struct {
	Color string                `json:"color"`
	Score *int                  `json:"score"`
	Teams []allianceTeamPayload `json:"teams"`
}

type matchPayload struct {
	ID    int64 `json:"id"`
	Event struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"event"`
	Division  divisionPayload   `json:"division"`
	Round     int               `json:"round"`
	Instance  int               `json:"instance"`
	MatchNum  int               `json:"matchnum"`
	Scheduled string            `json:"scheduled"`
	Started   string            `json:"started"`
	Field     string            `json:"field"`
	Alliances []alliancePayload `json:"alliances"`
}

type matchesEnvelope struct {
	Data []matchPayload `json:"data"`
	Meta pageMeta       `json:"meta"`
}

type skillsEntryPayload struct {
	Rank int `json:"rank"`
	Team struct {
		Team         string `json:"team"`
		TeamName     string `json:"teamName"`
		Organization string `json:"organization"`
		City         string `json:"city"`
		Region       string `json:"region"`
		Country      string `json:"country"`
		GradeLevel   string `json:"gradeLevel"`
	} `json:"team"`
	Scores struct {
		Score       int `json:"score"`
		Driver      int `json:"driver"`
		Programming int `json:"programming"`
	} `json:"scores"`
}

func mapEventPayload(in eventPayload) usecase.ExternalEvent {
	divisions := make([]usecase.ExternalDivision, 0, len(in.Divisions))
	for _, d := range in.Divisions {
		divisions = append(divisions, usecase.ExternalDivision{ID: d.ID, Name: d.Name})
	}
	return usecase.ExternalEvent{
		ID:    in.ID,
		SKU:   in.SKU,
		Name:  in.Name,
		Level: in.Level,
		Start: in.Start,
		End:   in.End,
		Location: usecase.ExternalLocation{
			Venue:   in.Location.Venue,
			City:    in.Location.City,
			Region:  in.Location.Region,
			Country: in.Location.Country,
		},
		Divisions: divisions,
	}
}

func mapSkillsPayload(in skillsEntryPayload) usecase.ExternalSkillsEntry {
	return usecase.ExternalSkillsEntry{
		TeamNumber:   in.Team.Team,
		TeamName:     in.Team.TeamName,
		Organization: in.Team.Organization,
		City:         in.Team.City,
		Region:       in.Team.Region,
		Country:      in.Team.Country,
		Grade:        in.Team.GradeLevel,
		Rank:         in.Rank,
		Score:        in.Scores.Score,
		Driver:       in.Scores.Driver,
		Programming:  in.Scores.Programming,
	}
}

func mapMatchPayload(in matchPayload) usecase.ExternalMatch {
	out := usecase.ExternalMatch{
		EventSKU:   in.Event.Code,
		EventName:  in.Event.Name,
		DivisionID: in.Division.ID,
		RoundCode:  in.Round,
		Instance:   in.Instance,
		Number:     in.MatchNum,
		Scheduled:  in.Scheduled,
		Started:    in.Started,
		Field:      in.Field,
	}
	for _, alliance := range in.Alliances {
		numbers := make([]string, 0, len(alliance.Teams))
		for _, t := range alliance.Teams {
			if t.Team.Name != "" {
				numbers = append(numbers, t.Team.Name)
			}
		}
		switch alliance.Color {
		case "red":
			out.RedTeams = numbers
			out.RedScore = alliance.Score
		case "blue":
			out.BlueTeams = numbers
			out.BlueScore = alliance.Score
		}
	}
	if out.RedTeams == nil {
		out.RedTeams = []string{}
	}
	if out.BlueTeams == nil {
		out.BlueTeams = []string{}
	}
	return out
}

package usecase

import "context"

// ResultsProvider is the source-of-record API surface the sync stages
// consume. Implemented by external/robotevents.
type ResultsProvider interface {
	FetchSeasonEvents(ctx context.Context, seasonID int, startFrom string) ([]ExternalEvent, error)
	FetchEventBySKU(ctx context.Context, sku string) (ExternalEvent, error)
	FetchEventTeamNumbers(ctx context.Context, eventID int64) ([]string, error)
	FetchSkillsStandings(ctx context.Context, skillsSeasonID int, gradeLevel string) ([]ExternalSkillsEntry, error)
	FetchTeamIDByNumber(ctx context.Context, teamNumber string) (int64, error)
	FetchTeamMatches(ctx context.Context, teamID int64, seasonID int) ([]ExternalMatch, error)
}

// CredentialSource yields the bearer credential for the source API.
// A missing or unreadable secret aborts the whole run.
type CredentialSource interface {
	APIKey(ctx context.Context) (string, error)
}

// CacheInvalidator signals downstream caches after a completed run.
// The CDN wiring lives outside this repo; a no-op satisfies it.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, paths []string) error
}

type ExternalLocation struct {
	Venue   string
	City    string
	Region  string
	Country string
}

type ExternalDivision struct {
	ID   int
	Name string
}

type ExternalEvent struct {
	ID        int64
	SKU       string
	Name      string
	Level     string
	Start     string
	End       string
	Location  ExternalLocation
	Divisions []ExternalDivision
}

type ExternalSkillsEntry struct {
	TeamNumber   string
	TeamName     string
	Organization string
	City         string
	Region       string
	Country      string
	Grade        string
	Rank         int
	Score        int
	Driver       int
	Programming  int
}

type ExternalMatch struct {
	EventSKU   string
	EventName  string
	DivisionID int
	RoundCode  int
	Instance   int
	Number     int
	Scheduled  string
	Started    string
	Field      string
	RedTeams   []string
	BlueTeams  []string
	RedScore   *int
	BlueScore  *int
}

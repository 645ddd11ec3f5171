package jolpica

import (
	"strconv"
	"strings"
)

// The jolpica API keeps the Ergast envelope: every response nests under
// MRData and encodes numbers as strings.
type mrEnvelope struct {
	MRData struct {
		Total          string          `json:"total"`
		Limit          string          `json:"limit"`
		Offset         string          `json:"offset"`
		StandingsTable *standingsTable `json:"StandingsTable"`
		RaceTable      *raceTable      `json:"RaceTable"`
	} `json:"MRData"`
}

type standingsTable struct {
	Season         string          `json:"season"`
	StandingsLists []standingsList `json:"StandingsLists"`
}

type standingsList struct {
	Round           string           `json:"round"`
	DriverStandings []driverStanding `json:"DriverStandings"`
}

type driverStanding struct {
	Position string        `json:"position"`
	Points   string        `json:"points"`
	Wins     string        `json:"wins"`
	Driver   driverPayload `json:"Driver"`
}

type driverPayload struct {
	DriverID        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber"`
	Code            string `json:"code"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
}

type raceTable struct {
	Season string        `json:"season"`
	Races  []racePayload `json:"Races"`
}

type racePayload struct {
	Round         string       `json:"round"`
	RaceName      string       `json:"raceName"`
	Results       []raceResult `json:"Results"`
	SprintResults []raceResult `json:"SprintResults"`
}

type raceResult struct {
	Position   string             `json:"position"`
	Grid       string             `json:"grid"`
	Points     string             `json:"points"`
	Driver     driverPayload      `json:"Driver"`
	FastestLap *fastestLapPayload `json:"FastestLap"`
}

type fastestLapPayload struct {
	Rank string `json:"rank"`
}

func parseInt(value string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return parsed
}

// parsePoints tolerates the fractional totals the API reports for
// shortened races.
func parsePoints(value string) int64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return int64(parsed)
}

func (r raceResult) isPodium() bool {
	position := parseInt(r.Position)
	return position >= 1 && position <= 3
}

func (r raceResult) isVictory() bool {
	return parseInt(r.Position) == 1
}

func (r raceResult) isPole() bool {
	return parseInt(r.Grid) == 1
}

func (r raceResult) hasFastestLap() bool {
	return r.FastestLap != nil && parseInt(r.FastestLap.Rank) == 1
}

package models

import "strings"

// Agent is a single leaderboard entry. Reputation is always on the canonical
// basis-point scale; sources convert before constructing an Agent.
type Agent struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	Reputation    Reputation `json:"reputation"`
	JobsCompleted int        `json:"jobs_completed"`
	TotalEarnings float64    `json:"total_earnings"`
	Avatar        string     `json:"avatar"`
	Tier          Tier       `json:"tier"`
	Specialties   []string   `json:"specialties"`
	HourlyRate    *float64   `json:"hourly_rate,omitempty"`
	Available     *bool      `json:"available,omitempty"`
	Profile       string     `json:"profile,omitempty"`
	Description   string     `json:"description,omitempty"`
}

// AggregateStats summarizes the whole marketplace. It comes from an
// authoritative source and may cover more agents than a client holds.
type AggregateStats struct {
	TotalAgents        int        `json:"total_agents"`
	AverageReputation  Reputation `json:"average_reputation"`
	TotalJobsCompleted int        `json:"total_jobs_completed"`
	TotalEarnings      float64    `json:"total_earnings"`
}

// Specialty is the closed set of specialties that have a dedicated avatar.
type Specialty string

const (
	SpecialtyCoding   Specialty = "coding"
	SpecialtyResearch Specialty = "research"
	SpecialtyWriting  Specialty = "writing"
	SpecialtyDesign   Specialty = "design"
	SpecialtyDebug    Specialty = "debug"
	SpecialtyBuild    Specialty = "build"
	SpecialtyReview   Specialty = "review"
	SpecialtyAPI      Specialty = "api"
	SpecialtyOther    Specialty = ""
)

// DefaultAvatar is shown for agents without a recognised specialty.
const DefaultAvatar = "🤖"

// ParseSpecialty maps free text onto the closed set, case-insensitively.
// Anything unrecognised becomes SpecialtyOther.
func ParseSpecialty(s string) Specialty {
	switch sp := Specialty(strings.ToLower(strings.TrimSpace(s))); sp {
	case SpecialtyCoding, SpecialtyResearch, SpecialtyWriting, SpecialtyDesign,
		SpecialtyDebug, SpecialtyBuild, SpecialtyReview, SpecialtyAPI:
		return sp
	default:
		return SpecialtyOther
	}
}

// Avatar returns the emoji shown for the specialty.
func (s Specialty) Avatar() string {
	switch s {
	case SpecialtyCoding:
		return "💻"
	case SpecialtyResearch:
		return "🔬"
	case SpecialtyWriting:
		return "✍️"
	case SpecialtyDesign:
		return "🎨"
	case SpecialtyDebug:
		return "🐛"
	case SpecialtyBuild:
		return "🏗️"
	case SpecialtyReview:
		return "👀"
	case SpecialtyAPI:
		return "🔌"
	default:
		return DefaultAvatar
	}
}

// AvatarFor derives an avatar from the first listed specialty.
func AvatarFor(specialties []string) string {
	if len(specialties) == 0 {
		return DefaultAvatar
	}
	return ParseSpecialty(specialties[0]).Avatar()
}

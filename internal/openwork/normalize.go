package openwork

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/inaiurai/leaderboard/internal/models"
)

// rawAgent is an agent object as the marketplace API returns it. Fields are
// kept raw so a value of the wrong type degrades to its default instead of
// failing the whole response.
type rawAgent struct {
	ID            json.RawMessage `json:"id"`
	Name          json.RawMessage `json:"name"`
	WalletAddress json.RawMessage `json:"wallet_address"`
	Reputation    json.RawMessage `json:"reputation"`
	JobsCompleted json.RawMessage `json:"jobs_completed"`
	TotalEarnings json.RawMessage `json:"total_earnings"`
	Specialties   json.RawMessage `json:"specialties"`
	HourlyRate    json.RawMessage `json:"hourly_rate"`
	Available     json.RawMessage `json:"available"`
	Profile       json.RawMessage `json:"profile"`
	Description   json.RawMessage `json:"description"`
}

type rawDashboard struct {
	TotalAgents        json.RawMessage `json:"total_agents"`
	AverageReputation  json.RawMessage `json:"average_reputation"`
	TotalJobsCompleted json.RawMessage `json:"total_jobs_completed"`
	TotalEarnings      json.RawMessage `json:"total_earnings"`
}

// normalizeAgent maps a raw agent onto the canonical record. scale is the top of
// the server's reputation range.
func normalizeAgent(raw rawAgent, scale float64) models.Agent {
	id := asString(raw.ID)
	address := asString(raw.WalletAddress)
	if address == "" {
		address = id
	}

	rep := models.ReputationFromPercent(models.DefaultReputationPercent)
	if v, ok := asFloat(raw.Reputation); ok {
		rep = models.ReputationFromScale(v, scale)
	}

	jobs, _ := asFloat(raw.JobsCompleted)
	earnings, _ := asFloat(raw.TotalEarnings)
	specialties := asStrings(raw.Specialties)

	a := models.Agent{
		ID:            id,
		Name:          asString(raw.Name),
		Address:       address,
		Reputation:    rep,
		JobsCompleted: int(jobs),
		TotalEarnings: earnings,
		Avatar:        models.AvatarFor(specialties),
		Tier:          rep.Tier(),
		Specialties:   specialties,
		Profile:       asString(raw.Profile),
		Description:   asString(raw.Description),
	}
	if v, ok := asFloat(raw.HourlyRate); ok {
		a.HourlyRate = &v
	}
	if v, ok := asBool(raw.Available); ok {
		a.Available = &v
	}
	return a
}

// normalizeStats maps the dashboard object onto AggregateStats.
func normalizeStats(raw rawDashboard, scale float64) models.AggregateStats {
	total, _ := asFloat(raw.TotalAgents)
	jobs, _ := asFloat(raw.TotalJobsCompleted)
	earnings, _ := asFloat(raw.TotalEarnings)
	avg := models.ReputationFromPercent(models.DefaultReputationPercent)
	if v, ok := asFloat(raw.AverageReputation); ok {
		avg = models.ReputationFromScale(v, scale)
	}
	return models.AggregateStats{
		TotalAgents:        int(total),
		AverageReputation:  avg,
		TotalJobsCompleted: int(jobs),
		TotalEarnings:      earnings,
	}
}

// decodeAgents decodes a JSON array of agents, skipping elements that are
// not objects.
func decodeAgents(data []byte, scale float64) ([]models.Agent, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	out := make([]models.Agent, 0, len(items))
	for _, item := range items {
		var raw rawAgent
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		out = append(out, normalizeAgent(raw, scale))
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func asString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	return ""
}

// asFloat accepts numbers and numeric strings.
func asFloat(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f, true
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func asBool(raw json.RawMessage) (bool, bool) {
	if isNull(raw) {
		return false, false
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return b, true
	}
	return false, false
}

// asStrings returns the string elements of an array, never nil.
func asStrings(raw json.RawMessage) []string {
	out := []string{}
	if isNull(raw) {
		return out
	}
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return out
	}
	for _, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			out = append(out, s)
		}
	}
	return out
}

package serp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"rankwatch/internal/types"
)

// rawEntry tolerates the field-name variants different SERP providers use.
type rawEntry struct {
	Position    int    `json:"position"`
	Rank        int    `json:"rank"`
	Link        string `json:"link"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
}

type rawPayload struct {
	OrganicResults []rawEntry `json:"organic_results"`
	Organic        []rawEntry `json:"organic"`
	Error          string     `json:"error"`
}

const maxCompetitors = 10

// ParseResponse extracts the own-site rank and competitor entries from a
// SERP API payload. The own site matches by domain containment, first
// hit wins. A missing position falls back to the entry's index.
func ParseResponse(keyword, ownDomain string, body []byte, observedAt time.Time) (types.RankObservation, error) {
	var payload rawPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return types.RankObservation{}, fmt.Errorf("serp payload for %q: %w: %v", keyword, types.ErrLookupFailure, err)
	}
	if payload.Error != "" {
		return types.RankObservation{}, fmt.Errorf("serp provider error %q: %w", payload.Error, types.ErrLookupFailure)
	}

	entries := payload.OrganicResults
	if len(entries) == 0 {
		entries = payload.Organic
	}

	obs := types.RankObservation{
		Keyword:    keyword,
		Rank:       types.Unranked,
		ObservedAt: observedAt,
	}

	for i, e := range entries {
		entryURL := e.Link
		if entryURL == "" {
			entryURL = e.URL
		}
		pos := e.Position
		if pos == 0 {
			pos = e.Rank
		}
		if pos == 0 {
			pos = i + 1
		}
		snippet := e.Snippet
		if snippet == "" {
			snippet = e.Description
		}

		own := entryURL != "" && ownDomain != "" && strings.Contains(entryURL, ownDomain)
		if own {
			if !obs.Rank.Ranked() {
				obs.Rank = types.Rank(pos)
				obs.OwnURL = entryURL
			}
			continue
		}
		if len(obs.Competitors) < maxCompetitors {
			obs.Competitors = append(obs.Competitors, types.SerpEntry{
				Position: pos,
				URL:      entryURL,
				Title:    e.Title,
				Snippet:  snippet,
			})
		}
	}

	return obs, nil
}

// OwnDomain extracts the host from a configured site URL. A bare domain
// without scheme is accepted as-is.
func OwnDomain(siteURL string) string {
	s := strings.TrimSpace(siteURL)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		return u.Host
	}
	return strings.Trim(strings.TrimSpace(siteURL), "/")
}

package apifootball

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/match-predictor/internal/usecase"
)

type envelope struct {
	Errors   json.RawMessage   `json:"errors"`
	Results  int               `json:"results"`
	Response []json.RawMessage `json:"response"`
}

type statusEnvelope struct {
	Errors   json.RawMessage `json:"errors"`
	Response struct {
		Requests struct {
			Current  int `json:"current"`
			LimitDay int `json:"limit_day"`
		} `json:"requests"`
	} `json:"response"`
}

type teamRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

type teamItem struct {
	Team teamRef `json:"team"`
}

type fixtureItem struct {
	Fixture struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Country string `json:"country"`
		Season  int    `json:"season"`
	} `json:"league"`
	Teams struct {
		Home teamRef `json:"home"`
		Away teamRef `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type statisticsItem struct {
	Team       teamRef     `json:"team"`
	Statistics []statEntry `json:"statistics"`
}

type statEntry struct {
	Type  string    `json:"type"`
	Value StatValue `json:"value"`
}

// StatValue is a provider statistic that may arrive as a number, a
// percentage string such as "55%", or null.
type StatValue struct {
	value   float64
	percent bool
	valid   bool
}

func (v *StatValue) UnmarshalJSON(data []byte) error {
	*v = StatValue{}
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	text := string(raw)
	if raw[0] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return nil
		}
		text = strings.TrimSpace(unquoted)
		if strings.HasSuffix(text, "%") {
			v.percent = true
			text = strings.TrimSpace(strings.TrimSuffix(text, "%"))
		}
	}

	parsed, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		v.percent = false
		return nil
	}
	v.value = parsed
	v.valid = true
	return nil
}

// Count returns the value as a non-negative integer, 0 when absent.
func (v StatValue) Count() int {
	if !v.valid || v.value < 0 {
		return 0
	}
	return int(math.Round(v.value))
}

// Fraction returns a share in [0,1], 0 when absent or unparsable. Values
// marked with "%" and whole numbers are percentages, so 1 and "1%" both
// read as 0.01; only a number strictly between 0 and 1 is already a share.
func (v StatValue) Fraction() float64 {
	if !v.valid {
		return 0
	}
	share := v.value
	if v.percent || share >= 1 || share == math.Trunc(share) {
		share /= 100
	}
	return math.Max(0, math.Min(1, share))
}

// decodeEnvelope rejects payloads whose errors field carries anything; the
// provider answers 200 with errors for bad keys and exhausted plans.
func decodeEnvelope(raw []byte) (envelope, error) {
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		return envelope{}, crerr.Mark(crerr.Wrap(err, "decode provider envelope"), usecase.ErrMalformedRecord)
	}
	if hasProviderErrors(env.Errors) {
		return envelope{}, crerr.Mark(crerr.Newf("provider reported errors: %s", abbreviateBody(env.Errors)), usecase.ErrSourceUnavailable)
	}
	return env, nil
}

func hasProviderErrors(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	switch trimmed {
	case "", "null", "[]", "{}":
		return false
	default:
		return true
	}
}

func parseProviderTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func mapStatistics(item statisticsItem) usecase.ExternalTeamStatistics {
	out := usecase.ExternalTeamStatistics{
		TeamExternalID: item.Team.ID,
		TeamName:       strings.TrimSpace(item.Team.Name),
	}
	for _, entry := range item.Statistics {
		switch strings.ToLower(strings.TrimSpace(entry.Type)) {
		case "ball possession":
			out.Possession = entry.Value.Fraction()
		case "total shots":
			out.Shots = entry.Value.Count()
		case "shots on goal":
			out.ShotsOnTarget = entry.Value.Count()
		case "corner kicks":
			out.Corners = entry.Value.Count()
		case "fouls":
			out.Fouls = entry.Value.Count()
		}
	}
	return out
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

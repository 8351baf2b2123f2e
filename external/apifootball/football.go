package apifootball

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/match-predictor/internal/usecase"
)

// FetchTeams lists the teams of a league season.
func (c *Client) FetchTeams(ctx context.Context, leagueID int64, season int) ([]usecase.ExternalTeam, error) {
	body, ok := c.Fetch(ctx, "teams", url.Values{
		"league": []string{strconv.FormatInt(leagueID, 10)},
		"season": []string{strconv.Itoa(season)},
	})
	if !ok {
		return nil, usecase.ErrSourceUnavailable
	}
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalTeam, 0, len(env.Response))
	for i, raw := range env.Response {
		var item teamItem
		if err := sonic.Unmarshal(raw, &item); err != nil {
			c.logger.WarnContext(ctx, "skip malformed team item", "league_id", leagueID, "index", i, "error", err)
			continue
		}
		out = append(out, usecase.ExternalTeam{
			ExternalID: item.Team.ID,
			Name:       strings.TrimSpace(item.Team.Name),
			Country:    strings.TrimSpace(item.Team.Country),
		})
	}
	return out, nil
}

// FetchFinishedFixtures lists finished (FT) fixtures of a league season.
func (c *Client) FetchFinishedFixtures(ctx context.Context, leagueID int64, season int) ([]usecase.ExternalFixture, error) {
	body, ok := c.Fetch(ctx, "fixtures", url.Values{
		"league": []string{strconv.FormatInt(leagueID, 10)},
		"season": []string{strconv.Itoa(season)},
		"status": []string{finishedStatus},
	})
	if !ok {
		return nil, usecase.ErrSourceUnavailable
	}
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalFixture, 0, len(env.Response))
	for i, raw := range env.Response {
		var item fixtureItem
		if err := sonic.Unmarshal(raw, &item); err != nil {
			c.logger.WarnContext(ctx, "skip malformed fixture item", "league_id", leagueID, "index", i, "error", err)
			continue
		}
		playedAt, _ := parseProviderTime(item.Fixture.Date)
		out = append(out, usecase.ExternalFixture{
			ExternalID: item.Fixture.ID,
			Status:     strings.ToUpper(strings.TrimSpace(item.Fixture.Status.Short)),
			PlayedAt:   playedAt,
			Season:     item.League.Season,
			Country:    strings.TrimSpace(item.League.Country),
			HomeTeam: usecase.ExternalTeam{
				ExternalID: item.Teams.Home.ID,
				Name:       strings.TrimSpace(item.Teams.Home.Name),
			},
			AwayTeam: usecase.ExternalTeam{
				ExternalID: item.Teams.Away.ID,
				Name:       strings.TrimSpace(item.Teams.Away.Name),
			},
			HomeGoals: item.Goals.Home,
			AwayGoals: item.Goals.Away,
		})
	}
	return out, nil
}

// FetchFixtureStatistics returns one entry per side of the fixture.
func (c *Client) FetchFixtureStatistics(ctx context.Context, fixtureID int64) ([]usecase.ExternalTeamStatistics, error) {
	body, ok := c.Fetch(ctx, "fixtures/statistics", url.Values{
		"fixture": []string{strconv.FormatInt(fixtureID, 10)},
	})
	if !ok {
		return nil, usecase.ErrSourceUnavailable
	}
	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	out := make([]usecase.ExternalTeamStatistics, 0, len(env.Response))
	for i, raw := range env.Response {
		var item statisticsItem
		if err := sonic.Unmarshal(raw, &item); err != nil {
			c.logger.WarnContext(ctx, "skip malformed statistics item", "fixture_id", fixtureID, "index", i, "error", err)
			continue
		}
		out = append(out, mapStatistics(item))
	}
	return out, nil
}

package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMatch_Validate(t *testing.T) {
	base := Match{HomeTeamID: 1, AwayTeamID: 2, HomeScore: 2, AwayScore: 1, PlayedAt: time.Date(2024, 8, 17, 14, 0, 0, 0, time.UTC)}
	assert.NoError(t, base.Validate())

	same := base
	same.AwayTeamID = 1
	assert.Error(t, same.Validate())

	negative := base
	negative.AwayScore = -1
	assert.Error(t, negative.Validate())

	undated := base
	undated.PlayedAt = time.Time{}
	assert.Error(t, undated.Validate())
}

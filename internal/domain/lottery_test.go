package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewardSpecFlatten(t *testing.T) {
	spec := RewardSpec{{Name: "1st", Count: 1}, {Name: "2nd", Count: 2}}
	assert.Equal(t, 3, spec.Total())
	assert.Equal(t, []string{"1st", "2nd", "2nd"}, spec.Flatten())
}

func TestRewardSpecEmpty(t *testing.T) {
	var spec RewardSpec
	assert.Zero(t, spec.Total())
	assert.Empty(t, spec.Flatten())
}

func TestRenumber(t *testing.T) {
	cs := []Comment{{ID: 7}, {ID: 3}, {ID: 9}}
	Renumber(cs)
	for i, c := range cs {
		assert.Equal(t, i+1, c.ID)
	}
}

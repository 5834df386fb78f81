package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingMigrations_All(t *testing.T) {
	pending := pendingMigrations(nil)

	assert.Len(t, pending, len(allMigrations))
	seen := map[string]bool{}
	for i, m := range pending {
		assert.False(t, seen[m.ID], "duplicate migration id %s", m.ID)
		seen[m.ID] = true
		assert.NotEmpty(t, m.UpSQL)
		if i > 0 {
			assert.Less(t, pending[i-1].ID, m.ID)
		}
	}
}

func TestPendingMigrations_SkipsApplied(t *testing.T) {
	first := pendingMigrations(nil)[0]

	pending := pendingMigrations(map[string]bool{first.ID: true})

	assert.Len(t, pending, len(allMigrations)-1)
	for _, m := range pending {
		assert.NotEqual(t, first.ID, m.ID)
	}
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeamHasMember(t *testing.T) {
	team := Team{MemberIDs: []string{"a", "b"}}
	assert.True(t, team.HasMember("a"))
	assert.False(t, team.HasMember("c"))
	assert.False(t, (&Team{}).HasMember(""))
}

func TestTeamOpenSlots(t *testing.T) {
	tests := []struct {
		members []string
		want    int
	}{
		{nil, 3},
		{[]string{"a"}, 2},
		{[]string{"a", "b"}, 1},
		{[]string{"a", "b", "c"}, 0},
		{[]string{"a", "b", "c", "d"}, 0},
	}
	for _, tt := range tests {
		team := Team{MemberIDs: tt.members}
		assert.Equal(t, tt.want, team.OpenSlots(), "members=%v", tt.members)
	}
}

func TestSessionAuthenticated(t *testing.T) {
	var s *Session
	assert.False(t, s.Authenticated())
	assert.False(t, (&Session{}).Authenticated())
	assert.True(t, (&Session{UserID: "u1"}).Authenticated())
}

func TestPoolEntryID(t *testing.T) {
	assert.Equal(t, "u1_2024-06", PoolEntryID("u1", "2024-06"))
}

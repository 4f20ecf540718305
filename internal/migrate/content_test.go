package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewblevins/taskbed/internal/types"
)

func TestDeriveContextTags(t *testing.T) {
	s := types.DefaultSnapshot()
	s.Tasks = []types.Task{
		{ID: "t1", Title: "Call the dentist", Tags: []string{}},
		{ID: "t2", Title: "Buy groceries", Tags: []string{}},
		{ID: "t3", Title: "Email Sarah about research", Tags: []string{}},
		{ID: "t4", Title: "Ponder existence", Tags: []string{}},
		{ID: "t5", Title: "Call mom", Tags: []string{"@anywhere"}},
	}

	out, changed := ApplyContent(s)
	require.True(t, changed)

	assert.True(t, out.TaskByID("t1").HasTag("@phone"))
	assert.True(t, out.TaskByID("t2").HasTag("@errands"))
	assert.True(t, out.TaskByID("t3").HasTag("@computer"))
	assert.Empty(t, out.TaskByID("t4").Tags, "no keyword, no tag")

	// Tasks that already carry tags are left alone.
	assert.Equal(t, []string{"@anywhere"}, out.TaskByID("t5").Tags)

	// Marker recorded; original untouched.
	assert.True(t, out.HasContentMigration(DeriveContextTags))
	assert.False(t, s.HasContentMigration(DeriveContextTags))
	assert.Empty(t, s.TaskByID("t1").Tags)
}

func TestDeriveContextTagsRunsOnce(t *testing.T) {
	s := types.DefaultSnapshot()
	s.Tasks = []types.Task{{ID: "t1", Title: "Call dentist", Tags: []string{}}}

	out, changed := ApplyContent(s)
	require.True(t, changed)

	// Second run: the marker gates it off, even after the user removed the tag.
	out.TaskByID("t1").Tags = []string{}
	again, changed := ApplyContent(out)
	assert.False(t, changed)
	assert.Empty(t, again.TaskByID("t1").Tags, "migration must not re-tag edited tasks")
}

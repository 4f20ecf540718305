package migrate

import (
	"strings"

	"github.com/andrewblevins/taskbed/internal/debug"
	"github.com/andrewblevins/taskbed/internal/types"
)

// DeriveContextTags is the name of the one-time migration that back-fills
// context tags on tasks created before tags existed, by keyword-matching
// task titles. Gated by the snapshot's contentMigrations markers so it never
// reruns and reclassifies tags the user has since edited.
const DeriveContextTags = "derive-context-tags"

// keywordTags maps title keywords to the context tag they imply. Matching
// is case-insensitive on word boundaries.
var keywordTags = map[string]string{
	"call":     "@phone",
	"phone":    "@phone",
	"text":     "@phone",
	"buy":      "@errands",
	"order":    "@errands",
	"shop":     "@errands",
	"return":   "@errands",
	"email":    "@computer",
	"write":    "@computer",
	"research": "@computer",
	"read":     "@computer",
	"website":  "@computer",
	"online":   "@computer",
	"clean":    "@home",
	"fix":      "@home",
	"organize": "@home",
}

// ApplyContent runs any one-time content migrations that have not yet been
// applied to the snapshot. Returns the (possibly new) snapshot and whether
// anything changed; a changed snapshot should be pushed so other devices
// see the markers.
func ApplyContent(s *types.Snapshot) (*types.Snapshot, bool) {
	if s.HasContentMigration(DeriveContextTags) {
		return s, false
	}

	next := s.Clone()
	tagged := 0
	for i := range next.Tasks {
		task := &next.Tasks[i]
		if len(task.Tags) > 0 {
			// Only untouched tasks get heuristic tags.
			continue
		}
		for _, word := range strings.Fields(strings.ToLower(task.Title)) {
			word = strings.Trim(word, ".,!?:;\"'()")
			if tag, ok := keywordTags[word]; ok && !task.HasTag(tag) {
				task.Tags = append(task.Tags, tag)
				tagged++
			}
		}
	}

	next.ContentMigrations = append(next.ContentMigrations, DeriveContextTags)
	if tagged > 0 {
		debug.Logf("content migration %s tagged %d task(s)", DeriveContextTags, tagged)
	}
	return next, true
}

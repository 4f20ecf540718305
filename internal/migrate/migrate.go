// Package migrate upgrades persisted snapshot blobs from older schema
// versions to the current one. Transforms run over the decoded JSON document
// (not the typed structs) so old shapes that no longer exist in the type
// definitions can still be read.
//
// The chain is an ordered set of steps keyed by source version: step v
// upgrades v to v+1. Every intermediate step runs exactly once, in ascending
// order. Applying the chain to an already-current blob is a no-op, and
// re-applying it to migrated data changes nothing.
package migrate

import (
	"encoding/json"
	"fmt"

	"github.com/andrewblevins/taskbed/internal/debug"
	"github.com/andrewblevins/taskbed/internal/types"
)

// CurrentVersion is the schema version this build reads and writes.
const CurrentVersion = types.SchemaVersion

// ErrUnknownVersion is wrapped into errors for blobs newer than this build
// understands. Guessing at a future schema is the one place failing loudly
// beats defaulting.
var ErrUnknownVersion = fmt.Errorf("snapshot schema version newer than %d", CurrentVersion)

type step func(doc map[string]interface{}) error

// steps[v] upgrades a version-v document to v+1.
var steps = map[int]step{
	1: migrateV1toV2,
	2: migrateV2toV3,
}

// Apply upgrades blob to the current schema version and returns the
// re-encoded document. Blobs already at the current version are returned
// re-encoded but structurally unchanged.
func Apply(blob []byte) ([]byte, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(blob, &doc); err != nil {
		return nil, fmt.Errorf("decoding snapshot for migration: %w", err)
	}

	version := docVersion(doc)
	if version > CurrentVersion {
		return nil, fmt.Errorf("%w: got version %d", ErrUnknownVersion, version)
	}

	for v := version; v < CurrentVersion; v++ {
		fn, ok := steps[v]
		if !ok {
			return nil, fmt.Errorf("no migration step from schema version %d", v)
		}
		if err := fn(doc); err != nil {
			return nil, fmt.Errorf("migrating schema version %d to %d: %w", v, v+1, err)
		}
		doc["schemaVersion"] = v + 1
		debug.Logf("migrated snapshot schema %d -> %d", v, v+1)
	}

	return json.Marshal(doc)
}

// docVersion extracts the persisted schema version; blobs from before
// versioning have none and are treated as version 1.
func docVersion(doc map[string]interface{}) int {
	v, ok := doc["schemaVersion"].(float64)
	if !ok {
		return 1
	}
	return int(v)
}

// migrateV1toV2: projects grow a status field (derived from the old boolean
// "completed"), tasks grow status and tags, and the snapshot grows the
// available-tags set.
func migrateV1toV2(doc map[string]interface{}) error {
	for _, p := range objSlice(doc, "projects") {
		if _, has := p["status"]; !has {
			if done, _ := p["completed"].(bool); done {
				p["status"] = string(types.ProjectCompleted)
			} else {
				p["status"] = string(types.ProjectActive)
			}
		}
		delete(p, "completed")
	}

	for _, t := range objSlice(doc, "tasks") {
		if _, has := t["status"]; !has {
			t["status"] = string(types.TaskActive)
		}
		if _, has := t["tags"]; !has {
			t["tags"] = []interface{}{}
		}
		if _, has := t["attributes"]; !has {
			t["attributes"] = map[string]interface{}{}
		}
	}

	if _, has := doc["availableTags"]; !has {
		tags := make([]interface{}, 0, len(types.DefaultTags()))
		for _, tag := range types.DefaultTags() {
			tags = append(tags, tag)
		}
		doc["availableTags"] = tags
	}
	return nil
}

// migrateV2toV3: tasks marked with the retired "someday" status move to the
// dedicated somedayItems collection, the areas collection appears, and
// waiting fields are cleared on tasks that are not waiting.
func migrateV2toV3(doc map[string]interface{}) error {
	someday := anySlice(doc, "somedayItems")
	kept := make([]interface{}, 0)

	for _, raw := range anySlice(doc, "tasks") {
		t, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if status, _ := t["status"].(string); status == "someday" {
			item := map[string]interface{}{
				"id":        t["id"],
				"title":     t["title"],
				"createdAt": t["createdAt"],
			}
			if notes, has := t["notes"]; has {
				item["notes"] = notes
			}
			someday = append(someday, item)
			continue
		}
		if status, _ := t["status"].(string); status != string(types.TaskWaiting) {
			delete(t, "waitingFor")
			delete(t, "waitingSince")
		}
		kept = append(kept, t)
	}

	doc["tasks"] = kept
	doc["somedayItems"] = someday
	if _, has := doc["areas"]; !has {
		doc["areas"] = []interface{}{}
	}
	return nil
}

// objSlice returns doc[key] as a slice of JSON objects, skipping entries of
// other shapes.
func objSlice(doc map[string]interface{}, key string) []map[string]interface{} {
	raw := anySlice(doc, key)
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}

func anySlice(doc map[string]interface{}, key string) []interface{} {
	raw, _ := doc[key].([]interface{})
	return raw
}

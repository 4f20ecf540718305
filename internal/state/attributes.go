package state

import (
	"strings"

	"github.com/google/uuid"

	"github.com/andrewblevins/taskbed/internal/types"
)

// AddAttribute defines a new user attribute with no options yet.
func AddAttribute(s *types.Snapshot, name string) (*types.Snapshot, *types.AttributeDefinition) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, nil
	}
	next := s.Clone()
	attr := types.AttributeDefinition{
		ID:      uuid.NewString(),
		Name:    name,
		Options: []types.AttributeOption{},
	}
	next.Attributes = append(next.Attributes, attr)
	return next, &next.Attributes[len(next.Attributes)-1]
}

// RenameAttribute updates an attribute's display name.
func RenameAttribute(s *types.Snapshot, id, name string) *types.Snapshot {
	name = strings.TrimSpace(name)
	if name == "" || s.AttributeByID(id) == nil {
		return s
	}
	next := s.Clone()
	next.AttributeByID(id).Name = name
	return next
}

// DeleteAttribute removes a definition and strips its key from every task's
// attribute map.
func DeleteAttribute(s *types.Snapshot, id string) *types.Snapshot {
	if s.AttributeByID(id) == nil {
		return s
	}
	next := s.Clone()
	attrs := next.Attributes[:0]
	for _, a := range next.Attributes {
		if a.ID != id {
			attrs = append(attrs, a)
		}
	}
	next.Attributes = attrs
	for i := range next.Tasks {
		delete(next.Tasks[i].Attributes, id)
	}
	return next
}

// AddAttributeOption appends an option to an attribute's ordered option set.
func AddAttributeOption(s *types.Snapshot, attributeID, label, color string) (*types.Snapshot, *types.AttributeOption) {
	label = strings.TrimSpace(label)
	if label == "" || s.AttributeByID(attributeID) == nil {
		return s, nil
	}
	next := s.Clone()
	attr := next.AttributeByID(attributeID)
	attr.Options = append(attr.Options, types.AttributeOption{
		ID:    uuid.NewString(),
		Label: label,
		Color: color,
	})
	return next, &attr.Options[len(attr.Options)-1]
}

// DeleteAttributeOption removes an option. Task values that referenced the
// option id are cleared so groupings never point at a deleted option.
func DeleteAttributeOption(s *types.Snapshot, attributeID, optionID string) *types.Snapshot {
	attr := s.AttributeByID(attributeID)
	if attr == nil {
		return s
	}
	found := false
	for _, o := range attr.Options {
		if o.ID == optionID {
			found = true
			break
		}
	}
	if !found {
		return s
	}

	next := s.Clone()
	a := next.AttributeByID(attributeID)
	options := a.Options[:0]
	for _, o := range a.Options {
		if o.ID != optionID {
			options = append(options, o)
		}
	}
	a.Options = options
	for i := range next.Tasks {
		if next.Tasks[i].Attributes[attributeID] == optionID {
			delete(next.Tasks[i].Attributes, attributeID)
		}
	}
	return next
}

// SetTaskAttribute assigns an attribute value on a task, or clears it when
// optionID is empty. Values must reference an existing option.
func SetTaskAttribute(s *types.Snapshot, taskID, attributeID, optionID string) *types.Snapshot {
	task := s.TaskByID(taskID)
	attr := s.AttributeByID(attributeID)
	if task == nil || attr == nil {
		return s
	}
	if optionID != "" {
		valid := false
		for _, o := range attr.Options {
			if o.ID == optionID {
				valid = true
				break
			}
		}
		if !valid {
			return s
		}
	}

	next := s.Clone()
	t := next.TaskByID(taskID)
	if optionID == "" {
		delete(t.Attributes, attributeID)
	} else {
		if t.Attributes == nil {
			t.Attributes = map[string]string{}
		}
		t.Attributes[attributeID] = optionID
	}
	return next
}

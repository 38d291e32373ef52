package entity

import "strings"

const (
	TagDateClicked  = "date_clicked"
	TagDateUploaded = "date_uploaded"
)

// TagValue is one catalog value of a tag. ParentInfo scopes the value to
// specific values of other tags (a cascading dropdown: "city" values valid
// only under a given "country" value).
type TagValue struct {
	Value      string            `firestore:"value" json:"value"`
	ParentInfo map[string]string `firestore:"parent_info,omitempty" json:"parent_info,omitempty"`
}

// MatchesParents reports whether the value is visible under every supplied
// (parent tag, parent value) pair.
func (v TagValue) MatchesParents(filters map[string]string) bool {
	for parentTag, parentValue := range filters {
		if v.ParentInfo[parentTag] != parentValue {
			return false
		}
	}
	return true
}

type Tag struct {
	Name        string     `firestore:"name" json:"name"`
	DisplayName string     `firestore:"display_name,omitempty" json:"display_name,omitempty"`
	Values      []TagValue `firestore:"values" json:"values"`
}

func (t *Tag) HasValue(value string) bool {
	for _, v := range t.Values {
		if v.Value == value {
			return true
		}
	}
	return false
}

// NormalizeTagName converts a display name to the storage name.
func NormalizeTagName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// IsSystemTag reports whether the tag is reserved and undeletable.
func IsSystemTag(name string) bool {
	return name == TagDateClicked || name == TagDateUploaded
}

// SystemTags are seeded at startup and always present.
func SystemTags() []*Tag {
	return []*Tag{
		{Name: TagDateClicked, DisplayName: "Date & Time Clicked", Values: []TagValue{}},
		{Name: TagDateUploaded, DisplayName: "Date & Time Uploaded", Values: []TagValue{}},
	}
}

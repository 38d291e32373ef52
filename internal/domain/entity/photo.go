package entity

import (
	"strings"
	"time"
)

// DateTagLayout is the wire format for the date_clicked/date_uploaded tags.
const DateTagLayout = "2006-01-02T15:04"

type StorageInfo struct {
	Service string `firestore:"service" json:"service"`
	URL     string `firestore:"url" json:"url"`
	ID      string `firestore:"id" json:"id"`
	Size    int64  `firestore:"size" json:"size"`
}

type Photo struct {
	ID        string            `firestore:"id" json:"id"`
	Filename  string            `firestore:"filename" json:"filename"`
	Tags      map[string]string `firestore:"tags" json:"tags"`
	CreatedAt time.Time         `firestore:"created_at" json:"created_at"`
	Storage   StorageInfo       `firestore:"storage" json:"storage"`
}

type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// SearchCriteria is a conjunctive photo filter. Per tag only the first
// supplied value is honored, as a case-insensitive prefix match; extra
// values are accepted and ignored. Date ranges compare the string-encoded
// tag value with >=/<=.
type SearchCriteria struct {
	Filters    map[string][]string  `json:"filters,omitempty"`
	DateRanges map[string]DateRange `json:"date_ranges,omitempty"`
}

// Empty reports whether the criteria carries no sub-objects at all.
// Empty sub-objects are allowed and simply contribute no conditions.
func (c SearchCriteria) Empty() bool {
	return c.Filters == nil && c.DateRanges == nil
}

func (c SearchCriteria) Matches(p *Photo) bool {
	for tag, values := range c.Filters {
		if len(values) == 0 {
			continue
		}
		tagValue, ok := p.Tags[tag]
		if !ok {
			return false
		}
		prefix := strings.ToLower(values[0])
		if !strings.HasPrefix(strings.ToLower(tagValue), prefix) {
			return false
		}
	}

	for tag, dr := range c.DateRanges {
		if dr.Start == "" && dr.End == "" {
			continue
		}
		tagValue, ok := p.Tags[tag]
		if !ok {
			return false
		}
		if dr.Start != "" && tagValue < dr.Start {
			return false
		}
		if dr.End != "" && tagValue > dr.End {
			return false
		}
	}

	return true
}

package dto

import (
	"encoding/json"

	"camshare/internal/model"
)

// ActivityInfo is an activity entry as shown in the audit list.
type ActivityInfo struct {
	model.Activity
}

// MarshalJSON adds display date and time-of-day next to the RFC 3339 timestamp.
func (a ActivityInfo) MarshalJSON() ([]byte, error) {
	type Alias model.Activity
	return json.Marshal(&struct {
		Date      string `json:"date"`
		TimeOfDay string `json:"timeOfDay"`
		Alias
	}{
		Date:      a.OccurredAt.Format("02-01-2006"),
		TimeOfDay: a.OccurredAt.Format("15:04"),
		Alias:     Alias(a.Activity),
	})
}

type ActivityPage struct {
	Items []ActivityInfo `json:"items"`
	Total int            `json:"total"`
}

func NewActivityInfos(list []model.Activity) []ActivityInfo {
	out := make([]ActivityInfo, 0, len(list))
	for _, a := range list {
		out = append(out, ActivityInfo{Activity: a})
	}
	return out
}

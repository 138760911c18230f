package fsm

import (
	"encoding/json"
	"fmt"

	"github.com/sempaphie/FSMappointment/models"
)

// The Data API wraps activity lists differently depending on cluster
// version. decodeActivities tries each known shape in order and fails hard
// only when none matches, so a silent empty result never masks a contract
// change.
//
// Known shapes:
//  1. {"data": [{"activity": {...}}, ...]}
//  2. [{...}, ...]
//  3. {"value": [{...}, ...]}
//  4. {"results": [{...}, ...]}
func decodeActivities(body []byte) ([]models.Activity, error) {
	// Shape 1: envelope with per-item "activity" keys. The pointer slice
	// distinguishes a present-but-empty "data" key from an absent one.
	var envelope struct {
		Data *[]struct {
			Activity *models.Activity `json:"activity"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		activities := make([]models.Activity, 0, len(*envelope.Data))
		for _, item := range *envelope.Data {
			if item.Activity != nil {
				activities = append(activities, *item.Activity)
			}
		}
		return activities, nil
	}

	// Shape 2: bare array.
	var bare []models.Activity
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	// Shape 3: OData-style "value" wrapper.
	var value struct {
		Value []models.Activity `json:"value"`
	}
	if err := json.Unmarshal(body, &value); err == nil && value.Value != nil {
		return value.Value, nil
	}

	// Shape 4: "results" wrapper.
	var results struct {
		Results []models.Activity `json:"results"`
	}
	if err := json.Unmarshal(body, &results); err == nil && results.Results != nil {
		return results.Results, nil
	}

	preview := body
	if len(preview) > 200 {
		preview = preview[:200]
	}
	return nil, fmt.Errorf("%w: unrecognized activity payload: %s", models.ErrUpstreamDecode, preview)
}

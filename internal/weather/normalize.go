// Package weather talks to the upstream weather provider and reshapes its
// responses into the schema clients consume.
package weather

// Report is the normalized weather payload. Sections absent from the
// upstream response are omitted entirely, never emitted as null.
type Report struct {
	Current *Current                 `json:"current,omitempty"`
	Days    []map[string]interface{} `json:"days,omitempty"`
	Hours   []map[string]interface{} `json:"hours,omitempty"`
}

// Current holds the current observation with the provider's redundant
// nesting flattened away.
type Current struct {
	Location   map[string]interface{} `json:"location"`
	Conditions map[string]interface{} `json:"conditions"`
}

// Narrative is a forecast text in both unit systems.
type Narrative struct {
	English string `json:"english"`
	Metric  string `json:"metric"`
}

// Summary pairs the day and night forecast narratives.
type Summary struct {
	Day   Narrative `json:"day"`
	Night Narrative `json:"night"`
}

// Normalize cleans up the raw provider payload: it reduces unnecessary
// nesting, fixes inconsistent property names, and returns the data in a
// structure that keeps client-side code simple. Pure function; callers
// must reject upstream error envelopes before normalizing.
func Normalize(data map[string]interface{}) Report {
	var report Report

	if current, ok := asObject(data["current_observation"]); ok {
		report.Current = normalizeCurrent(current)
	}

	if days, ok := asObjectSlice(dig(data, "forecast", "simpleforecast", "forecastday")); ok {
		texts, _ := asObjectSlice(dig(data, "forecast", "txt_forecast", "forecastday"))
		report.Days = normalizeDays(days, texts)
	}

	if hours, ok := asObjectSlice(data["hourly_forecast"]); ok {
		report.Hours = normalizeHours(hours)
	}

	return report
}

// normalizeCurrent promotes display_location to location and drops the
// observation_location and image sub-objects; everything else stays flat
// under conditions.
func normalizeCurrent(current map[string]interface{}) *Current {
	location, _ := asObject(current["display_location"])
	conditions := make(map[string]interface{}, len(current))
	for key, value := range current {
		switch key {
		case "display_location", "observation_location", "image":
			continue
		}
		conditions[key] = value
	}
	return &Current{Location: location, Conditions: conditions}
}

// normalizeDays zips each forecast day with its day/night narrative pair.
// The provider keeps narratives in a parallel array twice the length of
// the forecast array: day i's texts live at indices 2i and 2i+1.
func normalizeDays(days, texts []map[string]interface{}) []map[string]interface{} {
	normalized := make([]map[string]interface{}, 0, len(days))
	for i, forecastDay := range days {
		day := make(map[string]interface{}, len(forecastDay)+1)
		for key, value := range forecastDay {
			switch key {
			case "high", "low":
				if units, ok := asObject(value); ok {
					day[key] = renameUnits(units)
				} else {
					day[key] = value
				}
			default:
				day[key] = value
			}
		}
		if 2*i+1 < len(texts) {
			day["summary"] = Summary{
				Day:   narrativeFrom(texts[2*i]),
				Night: narrativeFrom(texts[2*i+1]),
			}
		}
		normalized = append(normalized, day)
	}
	return normalized
}

// normalizeHours renames the provider's FCTTIME structure to a single
// date field; all other properties pass through unchanged.
func normalizeHours(hours []map[string]interface{}) []map[string]interface{} {
	normalized := make([]map[string]interface{}, 0, len(hours))
	for _, forecastHour := range hours {
		hour := make(map[string]interface{}, len(forecastHour))
		for key, value := range forecastHour {
			if key == "FCTTIME" {
				hour["date"] = value
				continue
			}
			hour[key] = value
		}
		normalized = append(normalized, hour)
	}
	return normalized
}

// renameUnits aligns temperature unit keys with the narrative unit naming:
// fahrenheit becomes english, celsius becomes metric.
func renameUnits(units map[string]interface{}) map[string]interface{} {
	renamed := make(map[string]interface{}, len(units))
	for key, value := range units {
		switch key {
		case "fahrenheit":
			renamed["english"] = value
		case "celsius":
			renamed["metric"] = value
		default:
			renamed[key] = value
		}
	}
	return renamed
}

func narrativeFrom(text map[string]interface{}) Narrative {
	return Narrative{
		English: asString(text["fcttext"]),
		Metric:  asString(text["fcttext_metric"]),
	}
}

// dig walks nested objects by key, returning nil when any step is absent.
func dig(data map[string]interface{}, keys ...string) interface{} {
	var value interface{} = data
	for _, key := range keys {
		obj, ok := asObject(value)
		if !ok {
			return nil
		}
		value = obj[key]
	}
	return value
}

func asObject(value interface{}) (map[string]interface{}, bool) {
	obj, ok := value.(map[string]interface{})
	return obj, ok
}

func asObjectSlice(value interface{}) ([]map[string]interface{}, bool) {
	raw, ok := value.([]interface{})
	if !ok {
		return nil, false
	}
	objs := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		obj, ok := asObject(item)
		if !ok {
			return nil, false
		}
		objs = append(objs, obj)
	}
	return objs, true
}

func asString(value interface{}) string {
	s, _ := value.(string)
	return s
}

package weather

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode builds the map shape the handler feeds the normalizer: the result
// of unmarshalling a provider response body.
func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	return data
}

func TestNormalizeCurrentOnly(t *testing.T) {
	data := decode(t, `{
		"current_observation": {
			"display_location": {"full": "Portland, OR", "zip": "97201"},
			"observation_location": {"full": "Somewhere station"},
			"image": {"url": "http://icons.example/logo.png"},
			"weather": "Clear",
			"temp_f": 71.3
		}
	}`)

	report := Normalize(data)

	require.NotNil(t, report.Current)
	assert.Nil(t, report.Days)
	assert.Nil(t, report.Hours)

	assert.Equal(t, "Portland, OR", report.Current.Location["full"])
	assert.Equal(t, "Clear", report.Current.Conditions["weather"])
	assert.Equal(t, 71.3, report.Current.Conditions["temp_f"])

	// Redundant nesting and imagery are dropped outright.
	assert.NotContains(t, report.Current.Conditions, "display_location")
	assert.NotContains(t, report.Current.Conditions, "observation_location")
	assert.NotContains(t, report.Current.Conditions, "image")

	// Absent sections must be omitted from the serialized report, not
	// emitted as null.
	body, err := json.Marshal(report)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Contains(t, out, "current")
	assert.NotContains(t, out, "days")
	assert.NotContains(t, out, "hours")
}

func TestNormalizeDays(t *testing.T) {
	data := decode(t, `{
		"forecast": {
			"simpleforecast": {
				"forecastday": [
					{
						"conditions": "Sunny",
						"high": {"fahrenheit": "70", "celsius": "21"},
						"low": {"fahrenheit": "50", "celsius": "10"}
					},
					{
						"conditions": "Rain",
						"high": {"fahrenheit": "60", "celsius": "16"},
						"low": {"fahrenheit": "45", "celsius": "7"}
					}
				]
			},
			"txt_forecast": {
				"forecastday": [
					{"fcttext": "Sunny day", "fcttext_metric": "Sunny day (metric)"},
					{"fcttext": "Clear night", "fcttext_metric": "Clear night (metric)"},
					{"fcttext": "Wet day", "fcttext_metric": "Wet day (metric)"},
					{"fcttext": "Wet night", "fcttext_metric": "Wet night (metric)"}
				]
			}
		}
	}`)

	report := Normalize(data)

	require.Len(t, report.Days, 2)

	first := report.Days[0]
	assert.Equal(t, "Sunny", first["conditions"])

	// Day/night narratives come from the parallel array at 2i and 2i+1.
	summary, ok := first["summary"].(Summary)
	require.True(t, ok)
	assert.Equal(t, Narrative{English: "Sunny day", Metric: "Sunny day (metric)"}, summary.Day)
	assert.Equal(t, Narrative{English: "Clear night", Metric: "Clear night (metric)"}, summary.Night)

	second, ok := report.Days[1]["summary"].(Summary)
	require.True(t, ok)
	assert.Equal(t, "Wet day", second.Day.English)
	assert.Equal(t, "Wet night", second.Night.English)

	// Unit keys align with the narrative naming.
	high, ok := first["high"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"english": "70", "metric": "21"}, high)
	low, ok := first["low"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"english": "50", "metric": "10"}, low)
	assert.NotContains(t, high, "fahrenheit")
	assert.NotContains(t, high, "celsius")
}

func TestNormalizeHours(t *testing.T) {
	data := decode(t, `{
		"hourly_forecast": [
			{"FCTTIME": {"hour": "14", "epoch": "1500000000"}, "temp": {"english": "72"}},
			{"FCTTIME": {"hour": "15", "epoch": "1500003600"}, "temp": {"english": "73"}}
		]
	}`)

	report := Normalize(data)

	require.Len(t, report.Hours, 2)
	first := report.Hours[0]
	assert.NotContains(t, first, "FCTTIME")
	date, ok := first["date"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "14", date["hour"])
	assert.Contains(t, first, "temp")
}

func TestNormalizeEmptyPayload(t *testing.T) {
	report := Normalize(map[string]interface{}{})
	assert.Nil(t, report.Current)
	assert.Nil(t, report.Days)
	assert.Nil(t, report.Hours)

	body, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(body))
}

func TestNormalizeAllSections(t *testing.T) {
	data := decode(t, `{
		"current_observation": {"display_location": {"full": "X"}, "weather": "Fog"},
		"forecast": {
			"simpleforecast": {"forecastday": [{"high": {"fahrenheit": "1", "celsius": "2"}, "low": {"fahrenheit": "3", "celsius": "4"}}]},
			"txt_forecast": {"forecastday": [
				{"fcttext": "d", "fcttext_metric": "dm"},
				{"fcttext": "n", "fcttext_metric": "nm"}
			]}
		},
		"hourly_forecast": [{"FCTTIME": {"hour": "1"}}]
	}`)

	report := Normalize(data)
	assert.NotNil(t, report.Current)
	assert.Len(t, report.Days, 1)
	assert.Len(t, report.Hours, 1)
}

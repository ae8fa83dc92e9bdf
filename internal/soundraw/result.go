package soundraw

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/sfx-api/internal/models"
)

// ResultResponse is the body of GET /results/{request_id}
type ResultResponse struct {
	RequestID string           `json:"request_id"`
	Status    models.JobStatus `json:"status"`
	Result    *TrackResult     `json:"result,omitempty"`
}

type TrackResult struct {
	ShareLink  string          `json:"share_link"`
	M4AURL     string          `json:"m4a_url,omitempty"`
	MP3URL     string          `json:"mp3_url,omitempty"`
	WAVURL     string          `json:"wav_url,omitempty"`
	Length     float64         `json:"length"`
	BPM        flexibleBPM     `json:"bpm"`
	Timestamps []TimestampInfo `json:"timestamps,omitempty"`
}

type TimestampInfo struct {
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Energy string  `json:"energy"`
}

// flexibleBPM accepts the bpm field as either a string or a number
type flexibleBPM string

func (b *flexibleBPM) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = flexibleBPM(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// Unknown shapes parse to 0 later.
		*b = ""
		return nil
	}
	*b = flexibleBPM(n.String())
	return nil
}

// Extracted is the subset of a finished job the pipeline returns
type Extracted struct {
	ShareLink      string
	AudioURL       string
	RequestID      string
	Length         float64
	BPM            int
	EnergyTimeline []models.EnergySegment
}

// ExtractResult picks the audio URL for format and normalizes the rest.
// m4a falls back to mp3 then wav; mp3 and wav yield an empty URL when missing.
func ExtractResult(resp *ResultResponse, format models.FileFormat) (Extracted, error) {
	if resp == nil || resp.Result == nil {
		return Extracted{}, &MissingResultError{}
	}
	r := resp.Result

	timeline := make([]models.EnergySegment, 0, len(r.Timestamps))
	for _, ts := range r.Timestamps {
		timeline = append(timeline, models.EnergySegment{Start: ts.Start, End: ts.End, Energy: ts.Energy})
	}

	return Extracted{
		ShareLink:      r.ShareLink,
		AudioURL:       selectAudioURL(r, format),
		RequestID:      resp.RequestID,
		Length:         r.Length,
		BPM:            parseBPM(string(r.BPM)),
		EnergyTimeline: timeline,
	}, nil
}

func selectAudioURL(r *TrackResult, format models.FileFormat) string {
	switch format {
	case models.FormatMP3:
		return r.MP3URL
	case models.FormatWAV:
		return r.WAVURL
	default:
		for _, u := range []string{r.M4AURL, r.MP3URL, r.WAVURL} {
			if u != "" {
				return u
			}
		}
		return ""
	}
}

// parseBPM reads the leading integer of s, returning 0 when there is none.
func parseBPM(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

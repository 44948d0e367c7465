package sanitize

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// frameAction tells the pipeline what to do with a decoded frame.
type frameAction int

const (
	frameKeep frameAction = iota
	frameDrop
	frameTerminate
)

// decoder converts a frame's raw text into a structured Frame and detects
// stream-termination sentinels. It never fails for input-shape reasons:
// frames that cannot be decoded are dropped or passed through raw.
type decoder struct {
	toJSON      bool
	repair      bool
	rawOnError  bool
	skipMarkers []string
}

func newDecoder(cfg Config) *decoder {
	return &decoder{
		toJSON:      cfg.ToJSON,
		repair:      cfg.RepairJSON,
		rawOnError:  cfg.YieldRawOnError,
		skipMarkers: cfg.SkipMarkers,
	}
}

func (d *decoder) decode(text string) (Frame, frameAction) {
	trimmed := strings.TrimSpace(text)
	for _, m := range d.skipMarkers {
		if trimmed == m {
			return Frame{}, frameTerminate
		}
	}
	if trimmed == "" {
		// Empty frames never carry content.
		return Frame{}, frameDrop
	}

	if !d.toJSON {
		return Frame{Text: text}, frameKeep
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		return Frame{Text: text, JSON: v}, frameKeep
	}
	if d.repair {
		if fixed, err := jsonrepair.JSONRepair(trimmed); err == nil {
			if err := json.Unmarshal([]byte(fixed), &v); err == nil {
				return Frame{Text: text, JSON: v}, frameKeep
			}
		}
	}
	if d.rawOnError {
		return Frame{Text: text}, frameKeep
	}
	return Frame{}, frameDrop
}

package scpi

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Label groups the :SYSTem:LABel vocabulary for the front-panel text label.
type Label struct {
	Text  Control
	State Control
}

func NewLabel() Label {
	return Label{
		Text:  NewControl(":SYSTem:LABel"),
		State: NewControl(":SYSTem:LABel:STATe"),
	}
}

// TurnOn returns the command enabling the label display.
func (l Label) TurnOn() string {
	return l.State.Set("ON")
}

// TurnOff returns the command disabling the label display.
func (l Label) TurnOff() string {
	return l.State.Set("OFF")
}

// dateMaskRe matches a run of up to four %-code pairs embedded in the label
// text, e.g. "%m%d" or "%H%M%S".
var dateMaskRe = regexp.MustCompile(`(?:%.){1,4}`)

// strftime-style codes supported in label date masks.
var dateMaskLayouts = map[string]string{
	"%Y": "2006",
	"%y": "06",
	"%m": "01",
	"%d": "02",
	"%H": "15",
	"%M": "04",
	"%S": "05",
}

// SetText returns the commands enabling the label and setting its text.
//
// The panel shows at most 8 characters, so the text is truncated first. A
// date mask of strftime-like codes (e.g. "run %m%d") is expanded against now.
func (l Label) SetText(text string, now time.Time) []string {
	trimmed := strings.TrimSpace(truncate(text, 8))

	if mask := dateMaskRe.FindString(trimmed); mask != "" {
		trimmed = strings.Replace(trimmed, mask, expandDateMask(mask, now), 1)
	}

	return []string{
		l.TurnOn(),
		l.Text.Set(fmt.Sprintf("%q", trimmed)),
	}
}

func expandDateMask(mask string, now time.Time) string {
	var layout strings.Builder
	for i := 0; i+1 < len(mask); i += 2 {
		code := mask[i : i+2]
		if l, ok := dateMaskLayouts[code]; ok {
			layout.WriteString(l)
		} else {
			layout.WriteString(code)
		}
	}

	return now.Format(layout.String())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}

package plugin

import "strings"

// Trigger pairs a lower-cased phrase with the plugin it activates.
type Trigger struct {
	Phrase string
	Plugin string
}

// Detector selects a plugin for a message by case-insensitive substring
// matching against an ordered trigger list; the first matching trigger
// wins. Detection is deliberately fail-open: it never returns an error, so
// a detection problem can never block generation.
type Detector struct {
	triggers []Trigger
}

// NewDetector constructs a Detector over the given ordered triggers.
// Phrases are normalized to lower case once at construction.
func NewDetector(triggers []Trigger) *Detector {
	normalized := make([]Trigger, len(triggers))
	for i, tr := range triggers {
		normalized[i] = Trigger{Phrase: strings.ToLower(tr.Phrase), Plugin: tr.Plugin}
	}
	return &Detector{triggers: normalized}
}

// Detect returns the name of the first plugin whose trigger phrase occurs
// in the message, false when no trigger matches.
func (d *Detector) Detect(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, tr := range d.triggers {
		if tr.Phrase != "" && strings.Contains(lower, tr.Phrase) {
			return tr.Plugin, true
		}
	}
	return "", false
}

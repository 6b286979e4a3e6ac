package intent

import (
	"strings"

	contractx "github.com/kopihaus/barista-agent/agent/contract"
)

// Config carries the tunable classifier constants. The defaults mirror the
// shipped behavior; they are configuration, not semantics.
type Config struct {
	UnknownConfidence float64 `envconfig:"UNKNOWN_CONFIDENCE" split_words:"true" default:"0.4"`
}

// Classifier walks the registry table in precedence order and returns the
// first intent whose keyword set matches. It is a pure function of the
// utterance text: no state, no randomness, no external calls.
type Classifier struct {
	defs []Definition
	cfg  Config
}

func NewClassifier(cfg Config) *Classifier {
	return &Classifier{defs: Definitions(), cfg: cfg}
}

func (c *Classifier) Classify(utterance string) (contractx.Intent, float64) {
	message := strings.ToLower(utterance)

	for _, def := range c.defs {
		if matchesAny(message, def.Keywords) {
			return def.Intent, def.Confidence
		}
	}
	return contractx.IntentUnknown, c.cfg.UnknownConfidence
}

func matchesAny(message string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	return false
}

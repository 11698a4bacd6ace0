package generator

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	log "github.com/sirupsen/logrus"
)

// OfflineGenerator is the fallback used when no LLM credentials are
// configured. It parses the instruction's date expression locally and
// emits at most one coarse candidate; the repair step fills in the rest.
type OfflineGenerator struct {
	parser *when.Parser
}

func NewOfflineGenerator() *OfflineGenerator {
	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)
	return &OfflineGenerator{parser: parser}
}

func (g *OfflineGenerator) SuggestEvents(_ context.Context, instruction string, now time.Time, _ string) ([]json.RawMessage, error) {
	result, err := g.parser.Parse(instruction, now)
	if err != nil || result == nil {
		log.Infof("offline generator found no date expression in instruction")
		return nil, nil
	}

	title := strings.TrimSpace(instruction[:result.Index] + instruction[result.Index+len(result.Text):])
	if title == "" {
		title = strings.TrimSpace(instruction)
	}

	c := struct {
		Title string `json:"title"`
		Start string `json:"start"`
		End   string `json:"end"`
	}{
		Title: title,
		Start: result.Time.Format(time.RFC3339),
		// Degenerate range on purpose; the repair step stretches it to the
		// configured minimum duration.
		End: result.Time.Format(time.RFC3339),
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return []json.RawMessage{raw}, nil
}

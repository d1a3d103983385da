package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// trendLabel is one entry of the batch classification response.
type trendLabel struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Category string `json:"category"` // deportes | no_deportes
}

// ClassifyTrends labels a list of trend names sports/non-sports in a single
// batch call and returns a parallel bool slice (true = sports). Unlike the
// other collaborator calls this one DOES return errors: the caller owns the
// degradation policy (classify everything as non-sports) and needs to know
// the AI path failed so it can fall back and log it.
func (c *Client) ClassifyTrends(ctx context.Context, names []string) ([]bool, int, error) {
	if len(names) == 0 {
		return nil, 0, nil
	}

	var list strings.Builder
	for i, name := range names {
		fmt.Fprintf(&list, "%d. %s\n", i, name)
	}

	prompt := fmt.Sprintf(`
Clasifica cada tendencia de Guatemala como deportiva o no deportiva.

Tendencias:
%s
Responde SOLO con un JSON array, un objeto por tendencia, en el mismo orden:
[{"index": 0, "name": "nombre", "category": "deportes"}, {"index": 1, "name": "nombre", "category": "no_deportes"}]

Usa "deportes" para fútbol, ligas, equipos, jugadores y aficiones; "no_deportes" para todo lo demás.
`, list.String())

	text, tokens, err := c.generate(ctx, prompt, 1000)
	if err != nil {
		return nil, 0, err
	}

	var labels []trendLabel
	cleaned := sanitize(text)
	if start := strings.Index(cleaned, "["); start >= 0 {
		if end := strings.LastIndex(cleaned, "]"); end > start {
			cleaned = cleaned[start : end+1]
		}
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), &labels); err != nil {
		return nil, tokens, fmt.Errorf("unparseable classification response: %w", err)
	}

	result := make([]bool, len(names))
	matched := 0
	for _, l := range labels {
		if l.Index >= 0 && l.Index < len(result) {
			result[l.Index] = strings.EqualFold(strings.TrimSpace(l.Category), "deportes")
			matched++
		}
	}
	if matched == 0 {
		return nil, tokens, fmt.Errorf("classification response matched no trends")
	}
	return result, tokens, nil
}

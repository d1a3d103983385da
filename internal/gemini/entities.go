package gemini

import (
	"context"
	"fmt"

	"github.com/standatpd/pulsetrends/internal/logger"
	"github.com/standatpd/pulsetrends/internal/nitter"
)

// PoliticalEntities is the deep entity-extraction result for one post.
// Every slice is non-nil; an empty extraction is a valid answer.
type PoliticalEntities struct {
	Entities        []string          `json:"entities"`
	Figures         []PoliticalFigure `json:"figures"`
	SocialUsernames []string          `json:"social_usernames"`
	LawsDecrees     []LawDecree       `json:"laws_decrees"`
	NewsEvents      []NewsEvent       `json:"news_events"`
	Nicknames       []Nickname        `json:"nicknames_detected"`

	TokensUsed int        `json:"-"`
	Provenance Provenance `json:"-"`
}

type PoliticalFigure struct {
	Name     string `json:"name"`
	RealName string `json:"real_name"`
	Role     string `json:"role"`
	Context  string `json:"context"`
}

type LawDecree struct {
	Title  string `json:"title"`
	Type   string `json:"type"`   // ley | decreto | acuerdo
	Status string `json:"status"` // propuesta | aprobada | en_debate
}

type NewsEvent struct {
	Event  string `json:"event"`
	Type   string `json:"type"`   // politico | judicial | electoral
	Impact string `json:"impact"` // alto | medio | bajo
}

type Nickname struct {
	Nickname string `json:"nickname"`
	RealName string `json:"real_name"`
	Context  string `json:"context"`
}

// EmptyEntities is the documented fallback when extraction fails: scoring
// and category tagging are never lost just because the deep call broke.
func EmptyEntities() PoliticalEntities {
	return PoliticalEntities{
		Entities:        []string{},
		Figures:         []PoliticalFigure{},
		SocialUsernames: []string{},
		LawsDecrees:     []LawDecree{},
		NewsEvents:      []NewsEvent{},
		Nicknames:       []Nickname{},
		Provenance:      ParseDefault,
	}
}

// ExtractPoliticalEntities asks the model for named figures, nickname-to-real
// name mappings, cited laws/decrees and referenced news events. Any failure
// returns the empty structure instead of an error.
func (c *Client) ExtractPoliticalEntities(ctx context.Context, post nitter.Post, trend string) PoliticalEntities {
	prompt := fmt.Sprintf(`
Analiza este tweet de Guatemala para extraer información política específica:

Tweet: "%s"
Usuario: @%s
Tendencia: %s

Extrae SOLO información verificable y específica en este JSON:
{
  "entities": ["entidades_politicas_guatemaltecas"],
  "figures": [{"name": "nombre_completo_o_apodo", "real_name": "nombre_real_si_es_apodo", "role": "cargo_o_funcion", "context": "contexto_relevante_de_mencion"}],
  "social_usernames": ["@usuarios_mencionados"],
  "laws_decrees": [{"title": "nombre_ley_decreto", "type": "ley|decreto|acuerdo", "status": "propuesta|aprobada|en_debate"}],
  "news_events": [{"event": "evento_noticia", "type": "politico|judicial|electoral", "impact": "alto|medio|bajo"}],
  "nicknames_detected": [{"nickname": "apodo_usado", "real_name": "nombre_real", "context": "por_que_mencionado"}]
}

DETECTAR FIGURAS POLÍTICAS GUATEMALTECAS POR:
- Nombres completos: "Alejandro Giammattei", "Bernardo Arévalo"
- Apodos comunes: "Jimmy", "Neto", "El Presidente"
- Referencias indirectas: "el mandatario", "el diputado de tal partido"
- Cargos específicos: "Ministro de Gobernación", "Fiscal General"

IMPORTANTE:
- Solo incluir información política de Guatemala
- Conectar apodos con nombres reales cuando sea posible
- Si no hay información de una categoría, usar array vacío []
- NO inventar información, solo lo que está en el tweet
`, post.Texto, post.Usuario, trend)

	text, tokens, err := c.generate(ctx, prompt, 1000)
	if err != nil {
		logger.Warn("entity extraction failed, returning empty structure", "usuario", post.Usuario, "error", err)
		return EmptyEntities()
	}

	var parsed PoliticalEntities
	prov, ok := decodeJSON(text, &parsed)
	if !ok {
		logger.Warn("entity extraction returned unparseable JSON", "usuario", post.Usuario)
		out := EmptyEntities()
		out.TokensUsed = tokens
		return out
	}

	// Backfill nil slices so consumers can range without checks
	if parsed.Entities == nil {
		parsed.Entities = []string{}
	}
	if parsed.Figures == nil {
		parsed.Figures = []PoliticalFigure{}
	}
	if parsed.SocialUsernames == nil {
		parsed.SocialUsernames = []string{}
	}
	if parsed.LawsDecrees == nil {
		parsed.LawsDecrees = []LawDecree{}
	}
	if parsed.NewsEvents == nil {
		parsed.NewsEvents = []NewsEvent{}
	}
	if parsed.Nicknames == nil {
		parsed.Nicknames = []Nickname{}
	}
	parsed.Provenance = prov
	parsed.TokensUsed = tokens
	return parsed
}

package gemini

import (
	"context"
	"fmt"
	"time"

	"github.com/standatpd/pulsetrends/internal/logger"
	"github.com/standatpd/pulsetrends/internal/nitter"
)

// SentimentAnalysis is the fixed response contract for single-post analysis.
// Field names match the persisted columns.
type SentimentAnalysis struct {
	Sentimiento   string            `json:"sentimiento"`           // positivo | negativo | neutral
	Score         float64           `json:"score_sentimiento"`     // [-1, 1]
	Confianza     float64           `json:"confianza_sentimiento"` // [0, 1]
	Emociones     []string          `json:"emociones_detectadas"`
	Intencion     string            `json:"intencion_comunicativa"` // informativo | opinativo | humoristico | alarmista | critico | promocional | conversacional | protesta
	Entidades     []MentionedEntity `json:"entidades_mencionadas"`
	Provenance    Provenance        `json:"-"`
	TokensUsed    int               `json:"-"`
	AnalyzedAtUTC time.Time         `json:"-"`
}

type MentionedEntity struct {
	Nombre   string `json:"nombre"`
	Tipo     string `json:"tipo"` // persona | organizacion | lugar | evento
	Contexto string `json:"contexto"`
}

// DefaultSentiment is what callers get when the model fails or answers
// garbage: a neutral, zero-confidence structure that is safe to persist.
func DefaultSentiment() SentimentAnalysis {
	return SentimentAnalysis{
		Sentimiento:   "neutral",
		Intencion:     "informativo",
		Emociones:     []string{},
		Entidades:     []MentionedEntity{},
		Provenance:    ParseDefault,
		AnalyzedAtUTC: time.Now().UTC(),
	}
}

// AnalyzeSentiment runs the single-post sentiment/intent/entity prompt. The
// response goes through the parser chain: strict parse, sanitized re-parse,
// per-field regex extraction, then the all-default structure. The returned
// Provenance records which stage won.
func (c *Client) AnalyzeSentiment(ctx context.Context, post nitter.Post, categoria string) SentimentAnalysis {
	prompt := fmt.Sprintf(`
Analiza el siguiente tweet en español de Guatemala y proporciona un análisis completo:

Tweet: "%s"
Categoría: %s
Usuario: @%s
Métricas: %d likes, %d retweets, %d replies

Proporciona tu análisis en el siguiente formato JSON exacto:
{
  "sentimiento": "positivo|negativo|neutral",
  "score_sentimiento": -1.0 a 1.0,
  "confianza_sentimiento": 0.0 a 1.0,
  "emociones_detectadas": ["alegría", "enojo", "miedo", "tristeza", "sorpresa", "asco"],
  "intencion_comunicativa": "informativo|opinativo|humoristico|alarmista|critico|promocional|conversacional|protesta",
  "entidades_mencionadas": [
    {"nombre": "nombre_entidad", "tipo": "persona|organizacion|lugar|evento", "contexto": "breve descripción"}
  ]
}

IMPORTANTE: Considera el contexto guatemalteco, usa solo las categorías especificadas, y asegúrate de que sea JSON válido.
`, post.Texto, categoria, post.Usuario, post.Likes, post.Retweets, post.Replies)

	text, tokens, err := c.generate(ctx, prompt, 500)
	if err != nil {
		logger.Warn("sentiment analysis failed, using defaults", "usuario", post.Usuario, "error", err)
		return DefaultSentiment()
	}

	analysis := ParseSentiment(text)
	analysis.TokensUsed = tokens
	return analysis
}

// ParseSentiment applies the parser chain to a raw model response.
func ParseSentiment(raw string) SentimentAnalysis {
	var parsed SentimentAnalysis
	if prov, ok := decodeJSON(raw, &parsed); ok && validSentiment(parsed.Sentimiento) {
		parsed.Provenance = prov
		parsed.AnalyzedAtUTC = time.Now().UTC()
		if parsed.Emociones == nil {
			parsed.Emociones = []string{}
		}
		if parsed.Entidades == nil {
			parsed.Entidades = []MentionedEntity{}
		}
		return parsed
	}

	// Field-level regex stage
	analysis := DefaultSentiment()
	found := false
	if v, ok := extractStringField(raw, "sentimiento"); ok && validSentiment(v) {
		analysis.Sentimiento = v
		found = true
	}
	if v, ok := extractFloatField(raw, "score_sentimiento"); ok {
		analysis.Score = clampFloat(v, -1, 1)
		found = true
	}
	if v, ok := extractFloatField(raw, "confianza_sentimiento"); ok {
		analysis.Confianza = clampFloat(v, 0, 1)
		found = true
	}
	if v, ok := extractStringField(raw, "intencion_comunicativa"); ok {
		analysis.Intencion = v
		found = true
	}
	if emo := extractStringList(raw, "emociones_detectadas"); emo != nil {
		analysis.Emociones = emo
		found = true
	}
	if found {
		analysis.Provenance = ParseRegex
	}
	return analysis
}

func validSentiment(s string) bool {
	switch s {
	case "positivo", "negativo", "neutral":
		return true
	}
	return false
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

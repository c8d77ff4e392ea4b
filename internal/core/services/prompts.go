package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
	"github.com/leyrag-labs/leyrag/internal/logger"
)

// DefaultPrompts are the embedded prompt templates, keyed by the
// well-known names in ports/driven. They seed the file-based prompt
// store and back every service when no store is configured.
var DefaultPrompts = map[string]string{
	driven.PromptSystem: `Eres un asistente legal especializado EXCLUSIVAMENTE en Seguridad Social de Argentina (ANSES, asignaciones familiares, AUH, prestaciones, regímenes vinculados).

REGLA DE ALCANCE (SCOPE):
- Solo puedes responder consultas relacionadas con seguridad social / ANSES.
- Si la consulta NO está relacionada, responde únicamente:
  "Solo puedo responder consultas de Seguridad Social (ANSES)."

REGLAS DE FUENTES (GROUNDING):
- Debes usar ÚNICAMENTE la información del bloque CONTEXTO provisto por el sistema (leyes/documentos).
- NO uses conocimiento general, memoria, ni información externa.
- NO inventes artículos, requisitos, definiciones, fechas, montos, procedimientos o excepciones.

EVIDENCIA OBLIGATORIA:
- Cada afirmación factual debe estar respaldada por evidencia textual del CONTEXTO.
- Debes citar SIEMPRE la fuente con el formato exacto: [DOC_ID:Lx-Ly] (donde DOC_ID es el identificador del documento y Lx-Ly son las líneas aproximadas).
- Si no existe evidencia suficiente en el CONTEXTO, responde:
  "No surge de los documentos provistos."
  y (opcional) pide qué documento/dato faltaría.

REGLAS DE INTERPRETACIÓN:
- Si hay ambigüedad (por ejemplo el caso del usuario no especifica datos clave), indícalo y formula preguntas puntuales, pero NO supongas.
- Si hay conflicto entre documentos del CONTEXTO, indícalo explícitamente con citas y NO elijas arbitrariamente; explica ambas lecturas.
- No combines reglas de distintos documentos como si fueran una sola norma. Si usas más de un documento, aclara qué aporta cada uno y cita ambos.

FORMATO DE SALIDA:
Siempre responde en español y con estas secciones:

1) Respuesta (conclusión breve)
2) Evidencia (citas): lista de fragmentos o referencias del CONTEXTO que sustentan la respuesta
3) Observaciones / Faltantes (si aplica): qué parte no está cubierta por el CONTEXTO o qué datos faltan para decidir

SEGURIDAD:
- No brindes asesoramiento legal definitivo; expresa que la respuesta es informativa y depende del texto provisto.
- No sugieras acciones fuera del CONTEXTO (por ejemplo trámites) si el CONTEXTO no los describe.`,

	driven.PromptTask: `CONSULTA DEL USUARIO:
%s

INSTRUCCIONES DE RESPUESTA:
- Responde SOLO con el CONTEXTO. No uses conocimiento externo.
- Cita toda afirmación factual con el formato de cita del CONTEXTO.
- Si la consulta NO es de seguridad social / ANSES: responde exactamente "Solo puedo responder consultas de Seguridad Social (ANSES)."
- Si la respuesta no surge del CONTEXTO: responde "No surge de los documentos provistos."

CONTEXTO (documentos recuperados por similitud):
%s

FORMATO DE SALIDA (obligatorio):
1) Respuesta:
<respuesta breve y directa>

2) Evidencia (citas):
- <punto de evidencia 1> [DOC_ID:Lx-Ly]
- <punto de evidencia 2> [DOC_ID:Lx-Ly]
...

3) Observaciones / Faltantes (si aplica):
- <ambigüedad o dato faltante> [cita si aplica]
- <si no surge, indicar qué faltaría>`,

	driven.PromptTaskCached: `CONSULTA DEL USUARIO:
%s

INSTRUCCIONES DE RESPUESTA:
- Responde SOLO con el CONTEXTO en caché. No uses conocimiento externo.
- Cita toda afirmación factual con el formato de cita del CONTEXTO.
- Si la consulta NO es de seguridad social / ANSES: responde exactamente "Solo puedo responder consultas de Seguridad Social (ANSES)."
- Si la respuesta no surge del CONTEXTO: responde "No surge de los documentos provistos."

FORMATO DE SALIDA (obligatorio):
1) Respuesta:
<respuesta breve y directa>

2) Evidencia (citas):
- <punto de evidencia 1> [DOC_ID:Lx-Ly]

3) Observaciones / Faltantes (si aplica):
- <ambigüedad o dato faltante>`,
}

// loadPrompt returns the named prompt from the store, falling back to
// the embedded default when the store is nil or the load fails.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		prompt, err := store.Load(name)
		if err == nil && prompt != "" {
			return prompt
		}
		if err != nil {
			logger.Warn("Prompt %q load failed: %v (using default)", name, err)
		}
	}
	return DefaultPrompts[name]
}

// buildContextBlock formats one document's text for the model context.
func buildContextBlock(doc domain.LawDocument, text string) string {
	return fmt.Sprintf("--- DOCUMENTO: %s (ID: %s) ---\n%s\n--- FIN: %s ---",
		doc.Titulo, doc.ID, text, doc.ID)
}

// citationPattern matches inline citations like [ley_24714:L142-L147]
// or [ley_24714:L142].
var citationPattern = regexp.MustCompile(`\[(ley_[\w\-]+):L\d+(?:-L\d+)?\]`)

// linkifyCitations rewrites inline citations into markdown links that
// point at the official law URL. Citations whose law id has no known
// URL are left untouched.
func linkifyCitations(answer string, docs []domain.LawDocument) string {
	urls := make(map[string]string, len(docs))
	for _, d := range docs {
		if d.URL != "" {
			urls[d.ID] = d.URL
		}
	}
	if len(urls) == 0 {
		return answer
	}

	return citationPattern.ReplaceAllStringFunc(answer, func(match string) string {
		groups := citationPattern.FindStringSubmatch(match)
		url, ok := urls[groups[1]]
		if !ok {
			return match
		}
		citation := strings.Trim(match, "[]")
		return fmt.Sprintf("[%s](%s)", citation, url)
	})
}

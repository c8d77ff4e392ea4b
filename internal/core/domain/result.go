package domain

// Fixed user-facing messages. The serving boundary renders these
// directly, so they are written in the end users' language.
const (
	// MsgNoResults is returned when vector search yields no candidates.
	MsgNoResults = "No se encontraron leyes relevantes para tu consulta"

	// MsgQueryErrorPrefix prefixes the detail of a degraded query.
	MsgQueryErrorPrefix = "Error al procesar tu consulta: "

	// MsgEmptyQuery is returned when the query is empty or whitespace.
	MsgEmptyQuery = "La consulta no puede estar vacía"
)

// QueryResult is the uniform outcome of a query pipeline call.
// The pipeline never surfaces an error to its caller: failures degrade
// to a QueryResult with Confidence 0 and a localized Answer.
type QueryResult struct {
	// Answer is the generated (or error) text shown to the user.
	Answer string

	// Documents are the laws actually used as generation context,
	// ordered by relevance after reranking.
	Documents []LawDocument

	// Confidence is 1.0 on success and 0.0 on any degraded outcome.
	Confidence float64

	// ResponseTimeMs is the wall-clock latency of the whole call.
	ResponseTimeMs float64

	// CacheUsed reports whether a reusable context cache session served
	// this query. Observability only; it never changes retrieval logic.
	CacheUsed bool

	// CacheID is the remote cache handle when CacheUsed is true.
	CacheID string

	// Failure classifies a degraded outcome. FailureNone on success.
	Failure FailureKind
}

// OK reports whether the query completed without degradation.
func (r QueryResult) OK() bool {
	return r.Failure == FailureNone
}

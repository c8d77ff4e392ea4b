// Package domain contains the core business entities for leyrag:
// law documents, query results, context cache sessions and chat sessions.
// It has no dependencies on adapters or external services.
package domain

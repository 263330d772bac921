// Package rag implements the question answering pipeline over indexed
// documents.
//
// Ingestion runs source content through an adapter (internal/ingest),
// splits it into chunks (internal/chunker), embeds the chunks, and writes
// document and chunks to storage (internal/knowledge) in one step.
//
// Querying embeds the question, searches the vector index for the closest
// chunks, and synthesizes a grounded answer with source attribution.
// Answers are available in one shot (Service.Query) or as a stream of
// events (Service.QueryStream).
//
// Failure categories are exposed as sentinel errors in errors.go so
// callers can branch with errors.Is.
package rag

// Package knowledge persists documents and their embedded chunks in
// PostgreSQL with pgvector.
//
// Two collaborating types share the same schema:
//
//   - Store is the vector index: it writes a document's chunk batch in one
//     transaction and answers cosine-distance similarity queries.
//   - Registry is the document bookkeeping side: insertion-ordered listing
//     and removal. Removal deletes the chunk rows and the registry row in a
//     single transaction, so the two stores can never drift apart: a failed
//     index deletion rolls back the registry removal as well.
//
// Both types depend on a consumer-defined DB interface rather than
// *pgxpool.Pool directly, so tests can substitute fakes and production can
// pass the shared pool.
package knowledge

// Package domain defines the core business entities for ailab.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A knowledge-base entry that is embedded and retrieved
//   - ChatMessage: A role-tagged message sent to a completion service
//   - Answer: A generated RAG answer together with its sources
//   - Dataset: Tabular data analysed through prompting
//   - AppSettings: Per-service endpoints, keys and deployments
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

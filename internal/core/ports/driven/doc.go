// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Remote Services
//
// Each has one adapter per vendor plus an in-memory fake for tests:
//
//   - EmbeddingService: Turns text into a vector
//   - VectorIndex: Stores embedded documents and answers nearest-neighbour queries
//   - CompletionService: Produces a chat completion
//
// # Local Infrastructure
//
//   - ConfigStore: Application configuration (TOML file, environment)
//   - PromptStore: User-editable prompt templates
//   - SettingsValidator: Completeness checks before any remote call
//   - DatasetStore: CSV datasets for the analytics scenario
//   - DocumentLoader: Knowledge-base files for ingest
//   - TokenCounter: Prompt size estimates for logging
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

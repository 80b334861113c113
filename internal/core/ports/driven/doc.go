// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CatalogLoader: Loads the taxonomy and static mapping tables
//   - FilingProvider: Fetches regulatory filing text
//   - ProfileProvider: Fetches structured company data
//   - ResultStore: Theme result persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades to "no signal":
//
//   - EmbeddingService: Without it, semantic filtering and semantic matching are skipped.
//   - ThemeGenerator / LLMService: Without them, generative extraction is skipped.
//   - NewsProvider, PatentProvider, SocialProvider: External signals.
//   - ResponseCache, EmbeddingCache: Caching layers.
//   - SchedulerStore: Task history for the scheduler.
//
// Providers never return errors for "no data". They return a domain.Outcome
// whose Unavailable value explains why.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

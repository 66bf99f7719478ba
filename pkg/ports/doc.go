/*
Package ports defines the driven ports (interfaces) of the HSN assistant.

These interfaces decouple the assistant from external implementations, allowing
sessions to be kept in memory for a single process or in Redis when several
replicas serve the same agents.

# Key Interfaces

  - SessionStore: Responsible for persisting and loading session state.
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports

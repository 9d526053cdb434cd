/*
Package ports defines the driven ports (interfaces) for the flowsmith
builder service.

These interfaces decouple the builder from external implementations,
allowing flows to be kept in various storage backends without the service
or its adapters knowing which one is wired in.

# Key Interfaces

  - FlowStore: Responsible for persisting and loading saved flows.
  - FlowWatcher: Optional store extension that reports external changes,
    used to push refresh events to connected editors.
*/
package ports

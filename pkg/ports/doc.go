/*
Package ports defines the driven ports (interfaces) of the clearance engine.

These interfaces decouple the conversation core from storage and delivery,
so the same flow can run against memory, Redis or SQLite backends.

# Key Interfaces

  - SessionStore: persists and loads intake sessions.
  - DistributedLocker: serializes turns for one session across replicas.
  - Recorder: receives leads and analytics events for the sales team.
*/
package ports

/*
Package observability turns engine lifecycle hooks into metrics and logs.

Metrics are Prometheus collectors on a private registry, served by Handler.
Hooks from several sources can be chained with Compose.
*/
package observability

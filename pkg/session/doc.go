/*
Package session orchestrates access to intake sessions.

A Manager wraps a ports.SessionStore and guarantees at most one in-flight turn
per session id: an in-process mutex per id (reference counted, so idle ids do
not leak) plus an optional ports.DistributedLocker when several replicas share
the store.
*/
package session

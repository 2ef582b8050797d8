/*
Package session serializes access to agents.

Every mutation of an agent that arrives from outside the tick loop (an HTTP
request, an MCP tool call) runs inside Manager.WithLock, which combines a
reference-counted local mutex with an optional distributed lock so replicas
sharing a snapshot store do not interleave.
*/
package session

/*
Package observability turns session lifecycle hooks into Prometheus metrics
and structured log lines.

Both are plain domain.Hooks values, so they compose with any other hooks via
domain.MergeHooks and can be handed to session.WithHooks.
*/
package observability

/*
Package observability turns dispatch lifecycle hooks into metrics and structured logs.

Both Metrics.Hooks and LogHooks return domain.LifecycleHooks, so they can be merged and
passed to the session manager together.
*/
package observability

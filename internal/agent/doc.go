// Package agent contains the orchestration core: a registry of callable
// tools with declared schemas, a per-turn conversation log, and the loop
// that alternates between model invocations and tool dispatch until the
// model produces an answer with no further tool calls.
package agent

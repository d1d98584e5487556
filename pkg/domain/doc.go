// Package domain contains the value types exchanged between the walker, the
// scan orchestrator and the outer surfaces (CLI and HTTP API): scan targets,
// per-file results with their display lines, and result summaries. The types
// are free of infrastructure concerns so every layer can share them.
package domain

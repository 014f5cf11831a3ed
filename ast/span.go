// Package ast defines Topos's typed, span-annotated abstract syntax tree and
// the CST→AST lowering pass.
package ast

import "github.com/topos-lang/topos/span"

// Point is a zero-based line/column position, matching canopy's
// [2]int{row, col} convention (kai-core/parse.Range) but named for clarity.
type Point = span.Point

// Span is a half-open byte range plus the (line, column) of both endpoints.
// Immutable once constructed. Defined in package span so that syntax can use
// it without importing ast (which imports syntax).
type Span = span.Span

// FileID identifies a File within a workspace. Opaque outside this module's
// host-facing packages; callers obtain one from engine.Database.SetFile.
type FileID int64

// NodeID is the positional identity of an AST node: its file, the dotted
// kind-path from the root, and its ordinal among siblings of the same kind.
// Two lowering passes over unchanged text always produce equal NodeIDs,
// which is what makes memoized queries over individual nodes stable.
type NodeID struct {
	File     FileID
	KindPath string
	Ordinal  int
}

// StableID is the optional user-visible identifier carried by Requirement
// and Task nodes (REQ-*, TASK-*). The zero value means "none".
type StableID string

// HoleID is a TypedHole's unique, file-scoped, source-order identifier,
// stable across edits that don't add or remove earlier holes.
type HoleID int

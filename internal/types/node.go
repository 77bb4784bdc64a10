package types

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// NodeKind classifies what a Node represents in source.
type NodeKind string

const (
	KindFunction NodeKind = "function"
	KindMethod   NodeKind = "method"
	KindClass    NodeKind = "class"
	KindStruct   NodeKind = "struct"
	KindEnum     NodeKind = "enum"
	KindVariable NodeKind = "variable"
	KindField    NodeKind = "field"
	KindImport   NodeKind = "import"
	KindModule   NodeKind = "module"
	KindComment  NodeKind = "comment"
	KindOther    NodeKind = "other"
)

// EdgeKind classifies the semantic relationship an Edge records.
type EdgeKind string

const (
	EdgeCalls      EdgeKind = "calls"
	EdgeImports    EdgeKind = "imports"
	EdgeDefines    EdgeKind = "defines"
	EdgeContains   EdgeKind = "contains"
	EdgeImplements EdgeKind = "implements"
	EdgeExtends    EdgeKind = "extends"
	EdgeReferences EdgeKind = "references"
	EdgeOther      EdgeKind = "other"
)

// NodeID is a stable, collision-resistant 128-bit node identifier derived
// from (repository-relative path, kind, byte span). It is order-independent
// of file contents: recomputing it for an unchanged (path, kind, span)
// tuple always yields the same 16 bytes.
type NodeID [16]byte

// NewNodeID derives a NodeID deterministically. path must be repository
// relative so identity is stable across checkouts at different absolute
// paths.
func NewNodeID(path string, kind NodeKind, startByte, endByte int) NodeID {
	h, _ := blake2b.New(16, nil) // 128-bit digest, never errors for this size
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(startByte)))
	h.Write([]byte{':'})
	h.Write([]byte(strconv.Itoa(endByte)))
	var id NodeID
	copy(id[:], h.Sum(nil))
	return id
}

func (id NodeID) String() string { return hex.EncodeToString(id[:]) }

func (id NodeID) IsZero() bool { return id == NodeID{} }

// ParseNodeID parses the hex form produced by NodeID.String.
func ParseNodeID(s string) (NodeID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return NodeID{}, fmt.Errorf("invalid node id %q: %w", s, err)
	}
	if len(b) != 16 {
		return NodeID{}, fmt.Errorf("invalid node id %q: want 16 bytes, got %d", s, len(b))
	}
	var id NodeID
	copy(id[:], b)
	return id, nil
}

// MarshalText/UnmarshalText make NodeID usable as a JSON object key value
// (hex string), matching how Node/Edge records are persisted and returned
// over MCP.
func (id NodeID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *NodeID) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Location pins a Node to its source span.
type Location struct {
	File       string `json:"file"`
	StartByte  int    `json:"start_byte"`
	EndByte    int    `json:"end_byte"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
}

// Node is a code entity: a function, class, import, etc.
type Node struct {
	ID         NodeID            `json:"id"`
	Kind       NodeKind          `json:"kind"`
	Name       string            `json:"name"`
	Language   string            `json:"language"`
	Location   Location          `json:"location"`
	Parent     *NodeID           `json:"parent,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  int64             `json:"created_at"`  // unix nanos
	LastSeenAt int64             `json:"last_seen_at"` // unix nanos
	Tombstoned bool              `json:"tombstoned,omitempty"`
}

// Edge is a directed relationship between two Nodes. Confidence is 1.0 for
// syntactically-observed edges and < 1.0 for edges resolved by embedding
// similarity (§3 Invariants: monotone under reconciliation).
type Edge struct {
	Source     NodeID            `json:"source"`
	Target     NodeID            `json:"target"`
	Kind       EdgeKind          `json:"kind"`
	Confidence float64           `json:"confidence"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Unreliable reports whether this edge's confidence is below the
// reliability threshold the parser pipeline uses to tag similarity-resolved
// edges (§4.1 Resolution pass).
func (e Edge) Unreliable() bool { return e.Confidence < 0.6 }

// VectorEntry is the payload the vector store maintains per Node.
type VectorEntry struct {
	NodeID      NodeID    `json:"node_id"`
	Vector      []float32 `json:"vector"`
	Fingerprint string    `json:"fingerprint"` // source-text fingerprint (sha256 hex)
}

// CacheEntry is a memoized result keyed by a request fingerprint.
type CacheEntry struct {
	Fingerprint string
	Value       []byte
	TTLSeconds  int64
	CreatedAt   int64 // unix nanos
}

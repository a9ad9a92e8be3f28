// Package ast implements the tagged-tree representation the parser
// builds and the AST writer serialises (spec §4.6, §9's "Tagged AST"
// design note). The tree is a sum type with four disjoint shapes rather
// than a single struct with optional fields, so a reader never has to
// guess which fields of a node are meaningful for its tag.
package ast

import "github.com/trijezdci/m2front/pkg/strpool"

// Tag identifies the grammar production or terminal kind a node
// represents. The enumeration is open-ended (new tags are added as the
// grammar grows) but every node's shape is fixed once its Tag is known.
type Tag int

const (
	EMPTY Tag = iota

	// Compilation units and module structure.
	ROOT
	DEFMOD
	IMPMOD
	PROGMOD
	PRIORITY
	IMPLIST
	IMPORT
	UNQIMP
	EXPORT
	QEXPORT
	LOCALMOD

	// Declarations.
	CONSTDEF
	TYPEDEF
	VARDECL
	PROCDEF
	FPARAMS
	FPARAM
	FPARAMLIST
	DECLSEQ
	DEFLIST

	// Types.
	SUBR
	ENUM
	SET
	ARRAY
	RECORD
	EXTREC
	VRNTREC
	FIELDLISTSEQ
	FIELDLIST
	VFLIST
	VARIANTLIST
	VARIANT
	VLABELLIST
	POINTER
	PROCTYPE
	QUALIDENT

	// Blocks and statements.
	BLOCK
	STMTSEQ
	ASSIGN
	PCALL
	ARGS
	RETURN
	WITH
	IF
	ELSIFLIST
	ELSIF
	SWITCH
	CASELIST
	CASE
	LOOP
	WHILE
	REPEAT
	FORTO
	EXIT

	// Expressions.
	EQ
	NEQ
	LT
	LTEQ
	GT
	GTEQ
	IN
	PLUS
	MINUS
	OR
	NEG
	ASTERISK
	SOLIDUS
	DIV
	MOD
	AND
	NOT
	SETVAL
	DESIG
	FCALL
	DEREF
	SELECT
	INDEX
	INDEXLIST

	// Terminal leaves / lists.
	IDENT
	IDENTLIST
	INTVAL
	REALVAL
	CHRVAL
	QUOTEDVAL
	FILENAME
	OPTIONS
)

var tagNames = map[Tag]string{
	EMPTY: "EMPTY", ROOT: "ROOT", DEFMOD: "DEFMOD", IMPMOD: "IMPMOD",
	PROGMOD: "PROGMOD", PRIORITY: "PRIORITY", IMPLIST: "IMPLIST",
	IMPORT: "IMPORT", UNQIMP: "UNQIMP", EXPORT: "EXPORT", QEXPORT: "QEXPORT",
	LOCALMOD: "LOCALMOD", CONSTDEF: "CONSTDEF", TYPEDEF: "TYPEDEF",
	VARDECL: "VARDECL", PROCDEF: "PROCDEF", FPARAMS: "FPARAMS",
	FPARAM: "FPARAM", FPARAMLIST: "FPARAMLIST", DECLSEQ: "DECLSEQ",
	DEFLIST: "DEFLIST",
	SUBR: "SUBR", ENUM: "ENUM", SET: "SET", ARRAY: "ARRAY", RECORD: "RECORD",
	EXTREC: "EXTREC", VRNTREC: "VRNTREC", FIELDLISTSEQ: "FIELDLISTSEQ",
	FIELDLIST: "FIELDLIST", VFLIST: "VFLIST", VARIANTLIST: "VARIANTLIST",
	VARIANT: "VARIANT",
	VLABELLIST: "VLABELLIST", POINTER: "POINTER", PROCTYPE: "PROCTYPE",
	QUALIDENT: "QUALIDENT", BLOCK: "BLOCK", STMTSEQ: "STMTSEQ",
	ASSIGN: "ASSIGN", PCALL: "PCALL", ARGS: "ARGS", RETURN: "RETURN",
	WITH: "WITH", IF: "IF", ELSIFLIST: "ELSIFLIST", ELSIF: "ELSIF",
	SWITCH: "SWITCH", CASELIST: "CASELIST", CASE: "CASE", LOOP: "LOOP",
	WHILE: "WHILE", REPEAT: "REPEAT", FORTO: "FORTO", EXIT: "EXIT",
	EQ: "EQ", NEQ: "NEQ", LT: "LT", LTEQ: "LTEQ", GT: "GT", GTEQ: "GTEQ",
	IN: "IN", PLUS: "PLUS", MINUS: "MINUS", OR: "OR", NEG: "NEG",
	ASTERISK: "ASTERISK", SOLIDUS: "SOLIDUS", DIV: "DIV", MOD: "MOD",
	AND: "AND", NOT: "NOT", SETVAL: "SETVAL", DESIG: "DESIG", FCALL: "FCALL",
	DEREF: "DEREF", SELECT: "SELECT", INDEX: "INDEX", INDEXLIST: "INDEXLIST",
	IDENT: "IDENT", IDENTLIST: "IDENTLIST", INTVAL: "INTVAL",
	REALVAL: "REALVAL", CHRVAL: "CHRVAL", QUOTEDVAL: "QUOTEDVAL",
	FILENAME: "FILENAME", OPTIONS: "OPTIONS",
}

// String renders the tag the way the AST writer prints it.
func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return "UNKNOWN_TAG"
}

// shape classifies what payload a tag may carry, checked by the
// constructors below (spec §4.6's "nonterminal tags may only carry child
// nodes; terminal tags may only carry values" invariant).
type shape int

const (
	shapeBranch shape = iota
	shapeTerminal
	shapeTerminalList
	shapeEmpty
)

var terminalTags = map[Tag]bool{
	IDENT: true, INTVAL: true, REALVAL: true, CHRVAL: true,
	QUOTEDVAL: true, FILENAME: true,
}

var terminalListTags = map[Tag]bool{
	IDENTLIST: true, OPTIONS: true, QUALIDENT: true,
}

func shapeOf(tag Tag) shape {
	switch {
	case tag == EMPTY:
		return shapeEmpty
	case terminalTags[tag]:
		return shapeTerminal
	case terminalListTags[tag]:
		return shapeTerminalList
	default:
		return shapeBranch
	}
}

// Node is the sum type Branch(tag, children) | Leaf(tag, value) |
// ValueList(tag, values) | Empty. Exactly one of children/value/values is
// meaningful, selected by tag; callers never need a type switch because
// the accessors below already enforce the right shape.
type Node struct {
	tag      Tag
	children []*Node
	value    strpool.Handle
	values   []strpool.Handle
}

var emptyNode = &Node{tag: EMPTY}

// Empty returns the single Empty sentinel node. Every call returns the
// same pointer, so Empty nodes compare equal by identity (spec §4.6).
func Empty() *Node { return emptyNode }

// NewBranch constructs a fixed-arity nonterminal node. It panics if tag
// is a terminal or terminal-list tag — a parser bug, not a data error.
func NewBranch(tag Tag, children ...*Node) *Node {
	if shapeOf(tag) != shapeBranch {
		panic("ast: NewBranch called with non-branch tag " + tag.String())
	}
	cs := make([]*Node, len(children))
	copy(cs, children)
	return &Node{tag: tag, children: cs}
}

// NewList drains fifo into a variable-arity branch node, preserving
// insertion order (spec §4.6's new_list).
func NewList(tag Tag, fifo *FIFO) *Node {
	if shapeOf(tag) != shapeBranch {
		panic("ast: NewList called with non-branch tag " + tag.String())
	}
	return &Node{tag: tag, children: fifo.Drain()}
}

// NewTerminal constructs a single-value leaf node.
func NewTerminal(tag Tag, value strpool.Handle) *Node {
	if shapeOf(tag) != shapeTerminal {
		panic("ast: NewTerminal called with non-terminal tag " + tag.String())
	}
	return &Node{tag: tag, value: value}
}

// NewTerminalList constructs a list-of-values leaf node holding a copy of
// values, in order.
func NewTerminalList(tag Tag, values []strpool.Handle) *Node {
	if shapeOf(tag) != shapeTerminalList {
		panic("ast: NewTerminalList called with non-terminal-list tag " + tag.String())
	}
	vs := make([]strpool.Handle, len(values))
	copy(vs, values)
	return &Node{tag: tag, values: vs}
}

// Tag returns n's tag.
func (n *Node) Tag() Tag { return n.tag }

// SubnodeCount returns the number of children of a branch node, or 0 for
// any other shape.
func (n *Node) SubnodeCount() int { return len(n.children) }

// SubnodeForIndex returns the i'th child of a branch node.
func (n *Node) SubnodeForIndex(i int) *Node { return n.children[i] }

// ValueCount returns the number of values of a terminal-list node, or 1
// for a single-value terminal, or 0 otherwise.
func (n *Node) ValueCount() int {
	switch shapeOf(n.tag) {
	case shapeTerminal:
		return 1
	case shapeTerminalList:
		return len(n.values)
	default:
		return 0
	}
}

// ValueForIndex returns the i'th value of a terminal-list node, or the
// sole value of a single-value terminal when i == 0.
func (n *Node) ValueForIndex(i int) strpool.Handle {
	if shapeOf(n.tag) == shapeTerminal {
		return n.value
	}
	return n.values[i]
}

// ReplaceSubnode overwrites the i'th child of a branch node. Used only by
// the parser while assembling a node whose final shape depends on input
// seen after the node was first allocated (spec §4.6).
func (n *Node) ReplaceSubnode(i int, replacement *Node) {
	if i < 0 || i >= len(n.children) {
		panic("ast: ReplaceSubnode index out of range")
	}
	n.children[i] = replacement
}

// table.go implements the scoped symbol table. The table owns a stack of
// scopes and a per-identifier stack of entries. Nested function definitions
// shadow outer declarations and are cleaned up when their scope closes.
// Non-local variable uses are recorded as hidden by-reference parameters on
// every function between the use and the declaration.

package ir

import (
	"go.uber.org/zap"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Lookup selects the search discipline of LookupEntry.
type Lookup int

// Scope is one level of the scope stack. It carries the function whose body
// the scope spans and a running offset counter for variable insertion.
type Scope struct {
	NestingLevel  int
	CurrentOffset int
	Fun           *Entry
}

// Table is the scoped symbol table.
type Table struct {
	scopes  []*Scope
	entries map[string][]*Entry
	log     *zap.Logger
}

// ---------------------
// ----- Constants -----
// ---------------------

const (
	// Current restricts the search to the innermost scope's nesting level.
	Current Lookup = iota
	// All searches the top of the per-identifier stack across all scopes.
	All
)

// ---------------------
// ----- Functions -----
// ---------------------

// NewTable returns an empty symbol table that logs through the given logger.
// A nil logger disables logging.
func NewTable(log *zap.Logger) *Table {
	if log == nil {
		log = zap.NewNop()
	}
	return &Table{
		entries: make(map[string][]*Entry),
		log:     log,
	}
}

// InitSymbolTable constructs a fresh table, opens the synthetic global scope
// owned by the pseudo-function "global" and seeds it with the runtime
// library.
func InitSymbolTable(log *zap.Logger) *Table {
	t := NewTable(log)
	t.OpenScope(NewFunction("global", TypeVoid))
	t.addLibs()
	return t
}

// OpenScope pushes a new scope bound to function entry fun. The outermost
// scope gets nesting level zero, every further scope one more than its
// parent. The library scope is the level zero scope, the outermost user
// function lives at level one.
func (t *Table) OpenScope(fun *Entry) {
	level := 0
	if len(t.scopes) > 0 {
		level = t.cur().NestingLevel + 1
	}
	t.log.Debug("opening scope",
		zap.String("function", fun.Id),
		zap.Int("nestingLevel", level),
		zap.Stringer("returns", fun.Type))
	t.scopes = append(t.scopes, &Scope{NestingLevel: level, Fun: fun})
}

// CloseScope pops the innermost scope and removes, for every identifier,
// every entry whose nesting level is at least the closing scope's level.
// Closing with no open scope is a warning, not an error.
func (t *Table) CloseScope() {
	if len(t.scopes) == 0 {
		t.log.Warn("no scopes to close")
		return
	}
	level := t.cur().NestingLevel
	for id, stack := range t.entries {
		for len(stack) > 0 && stack[len(stack)-1].NestingLevel >= level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			delete(t.entries, id)
		} else {
			t.entries[id] = stack
		}
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// ScopeType returns the declared return type of the current scope's function.
func (t *Table) ScopeType() *Type {
	return t.cur().Fun.Type
}

// AddReturn increments the return statement count of the current scope's
// function.
func (t *Table) AddReturn() {
	t.cur().Fun.Returns++
}

// AddParam appends parameter entry p to the current scope's function.
func (t *Table) AddParam(p *Entry) error {
	return t.cur().Fun.addParam(p)
}

// CurScope returns the innermost scope.
func (t *Table) CurScope() *Scope {
	return t.cur()
}

// InsertEntry pushes entry e onto its per-identifier stack at the current
// nesting level. Variables and parameters are assigned the next frame offset
// of the scope. Duplicate detection is the caller's responsibility through a
// Current lookup.
func (t *Table) InsertEntry(e *Entry) {
	s := t.cur()
	e.NestingLevel = s.NestingLevel
	switch e.Kind {
	case VariableEntry, ParameterEntry:
		e.Offset = s.CurrentOffset
		s.CurrentOffset++
	}
	t.entries[e.Id] = append(t.entries[e.Id], e)
}

// LookupEntry searches for identifier id. With scope All the top of the
// per-identifier stack is returned regardless of level; with scope Current
// only an entry at the innermost nesting level matches. A miss returns an
// error when errOnMiss is set and nil otherwise.
func (t *Table) LookupEntry(id string, l Lookup, errOnMiss bool) (*Entry, error) {
	stack := t.entries[id]
	if len(stack) > 0 {
		top := stack[len(stack)-1]
		switch l {
		case Current:
			if top.NestingLevel == t.cur().NestingLevel {
				return top, nil
			}
		case All:
			return top, nil
		}
	}
	if errOnMiss {
		return nil, ErrorAt(0, "unknown identifier %s", id)
	}
	return nil, nil
}

// AddHidden records that entry e, declared at an outer nesting level, is
// used by the current function. Every function between the use and the
// declaration inherits e as a by-reference hidden parameter, and the name is
// made visible as a reference parameter at each of those levels so that
// transitive uses resolve without re-capturing.
func (t *Table) AddHidden(e *Entry) {
	// Walk from the outermost scope inwards so inner levels end up on top of
	// the per-identifier stack.
	for _, s := range t.scopes {
		if s.NestingLevel <= e.NestingLevel {
			continue
		}
		p := t.hiddenAt(s, e.Id)
		if p == nil {
			p = &Entry{
				Id:           e.Id,
				Kind:         ParameterEntry,
				Type:         e.Type,
				Mode:         ByReference,
				NestingLevel: s.NestingLevel,
				Offset:       s.CurrentOffset,
			}
			s.CurrentOffset++
			t.entries[e.Id] = append(t.entries[e.Id], p)
		}
		s.Fun.addHidden(p)
	}
}

// hiddenAt returns the entry for id at exactly the given scope's nesting
// level, or nil.
func (t *Table) hiddenAt(s *Scope, id string) *Entry {
	for _, e1 := range t.entries[id] {
		if e1.NestingLevel == s.NestingLevel {
			return e1
		}
	}
	return nil
}

// cur returns the innermost scope.
func (t *Table) cur() *Scope {
	return t.scopes[len(t.scopes)-1]
}

// addLibs seeds the global scope with the runtime library primitives.
func (t *Table) addLibs() {
	ibyte, _ := NewIArray(TypeByte)
	libs := []struct {
		id  string
		ret *Type
		par []*Entry
	}{
		{"writeInteger", TypeVoid, []*Entry{libParam("n", TypeInteger, ByValue)}},
		{"writeByte", TypeVoid, []*Entry{libParam("b", TypeByte, ByValue)}},
		{"writeChar", TypeVoid, []*Entry{libParam("b", TypeByte, ByValue)}},
		{"writeString", TypeVoid, []*Entry{libParam("s", ibyte, ByReference)}},
		{"readInteger", TypeInteger, nil},
		{"readByte", TypeByte, nil},
		{"readChar", TypeByte, nil},
		{"readString", TypeVoid, []*Entry{libParam("n", TypeInteger, ByValue), libParam("s", ibyte, ByReference)}},
		{"extend", TypeInteger, []*Entry{libParam("b", TypeByte, ByValue)}},
		{"shrink", TypeByte, []*Entry{libParam("i", TypeInteger, ByValue)}},
		{"strlen", TypeInteger, []*Entry{libParam("s", ibyte, ByReference)}},
		{"strcmp", TypeInteger, []*Entry{libParam("s1", ibyte, ByReference), libParam("s2", ibyte, ByReference)}},
		{"strcpy", TypeVoid, []*Entry{libParam("trg", ibyte, ByReference), libParam("src", ibyte, ByReference)}},
		{"strcat", TypeVoid, []*Entry{libParam("trg", ibyte, ByReference), libParam("src", ibyte, ByReference)}},
	}
	for _, l := range libs {
		f := NewFunction(l.id, l.ret)
		f.Params = l.par
		t.InsertEntry(f)
	}
}

// libParam builds a library parameter entry without the reference-mode check,
// which library signatures satisfy by construction.
func libParam(id string, typ *Type, mode PassMode) *Entry {
	return &Entry{Id: id, Kind: ParameterEntry, Type: typ, Mode: mode}
}

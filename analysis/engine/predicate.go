package engine

import (
	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/analysis/value"
)

// writeConsistent reports whether bufVal, the value an in-flight buffered
// write is currently known to hold, is consistent with having been
// produced by a forward WRITE of instr: a write of a known literal can
// only have produced that literal or left the buffer slot unconstrained
// (`*`); a write of a non-literal expression could have produced any
// value, so it is always consistent. The inverse of a write has to check
// the buffered message's store, not just its NML set.
func writeConsistent(instr machine.Stmt, bufVal value.Val) bool {
	if !instr.HasInteger {
		return true
	}
	return bufVal.IsStar() || bufVal.Eq(value.Concrete(instr.Integer))
}

// assertedValue reports the value a successful Read/ReadAssert of instr
// must have sourced its result from: a bare Read places no constraint on
// the location it read from (any value could have satisfied it), but a
// successful ReadAssert whose comparison is a known literal requires the
// location to have held exactly that value.
func assertedValue(instr machine.Stmt) (value.Val, bool) {
	if instr.Kind != machine.ReadAssert || !instr.HasInteger {
		return value.Val{}, false
	}
	return value.Concrete(instr.Integer), true
}

// narrowTo intersects cur, the predecessor's current (possibly `*`) view
// of a location, with want: if cur is already unconstrained, want becomes
// the predecessor's new, more precise knowledge; if cur is a concrete
// value it must already agree with want, or this predecessor is
// infeasible (ok is false).
func narrowTo(cur, want value.Val) (value.Val, bool) {
	if cur.IsStar() {
		return want, true
	}
	if cur.Eq(want) {
		return cur, true
	}
	return value.Val{}, false
}

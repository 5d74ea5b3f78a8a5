// The permission utility package defines primitives that allow to
// check a Subject for a permission.
//
// Stored permission data uses integer values where a positive value grants,
// a negative value denies and zero leaves a permission unset.
// FromValue converts such a value into a TriState.
package permission

// Func is the permission function to obtain the TriState for a permission.
type Func func(permission string) TriState

// Subject is a permission holder like a player.
type Subject interface {
	HasPermission(permission string) bool // Equal to PermissionValue(...).Bool()
	PermissionValue(permission string) TriState
}

// TriState can be in three states (True, False, Undefined), used for a setting.
type TriState uint8

const (
	Undefined TriState = iota // A permission is undefined.
	True                      // A permission is allowed.
	False                     // A permission is explicitly denied.
)

// Bool returns the bool value of a TriState where
// Undefined is converted to false.
func (t TriState) Bool() bool {
	return t == True
}

// FromValue returns the TriState of a stored permission value.
func FromValue(v int) TriState {
	switch {
	case v > 0:
		return True
	case v < 0:
		return False
	}
	return Undefined
}

// Value returns the stored permission value of t (1, -1 or 0).
func (t TriState) Value() int {
	switch t {
	case True:
		return 1
	case False:
		return -1
	}
	return 0
}

func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	}
	return "undefined"
}

// Of returns a Subject whose permissions are answered by fn.
// A nil fn answers Undefined for every permission.
func Of(fn Func) Subject { return funcSubject(fn) }

type funcSubject Func

func (f funcSubject) HasPermission(permission string) bool {
	return f.PermissionValue(permission).Bool()
}

func (f funcSubject) PermissionValue(permission string) TriState {
	if f == nil {
		return Undefined
	}
	return f(permission)
}

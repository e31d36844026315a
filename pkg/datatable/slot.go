package datatable

// Slot holds one interactive concern's state.
//
// Two ownership strategies exist. An Owned slot is held by the table: Set stores
// the value and the next View reflects it. A Controlled slot is held by the
// caller: Get reads the caller's value and Set only reports the requested value
// through onChange; the table shows the change once the caller's Get returns it.
type Slot[S any] interface {
	Get() S
	Set(S)
	Controlled() bool
}

type ownedSlot[S any] struct {
	value S
}

// Owned returns a table-held slot starting at initial.
func Owned[S any](initial S) Slot[S] {
	return &ownedSlot[S]{value: initial}
}

func (s *ownedSlot[S]) Get() S           { return s.value }
func (s *ownedSlot[S]) Set(v S)          { s.value = v }
func (s *ownedSlot[S]) Controlled() bool { return false }

type controlledSlot[S any] struct {
	get      func() S
	onChange func(S)
}

// Controlled returns a caller-held slot. get must not call back into the table.
func Controlled[S any](get func() S, onChange func(S)) Slot[S] {
	return &controlledSlot[S]{get: get, onChange: onChange}
}

func (s *controlledSlot[S]) Get() S { return s.get() }

func (s *controlledSlot[S]) Set(v S) {
	if s.onChange != nil {
		s.onChange(v)
	}
}

func (s *controlledSlot[S]) Controlled() bool { return true }

// Bound is a Controlled slot over a caller variable. Set reports the change and,
// because the caller's variable is the one read back, also stores it there.
// It suits callers that accept every transition as-is.
func Bound[S any](ptr *S, onChange func(S)) Slot[S] {
	return Controlled(func() S { return *ptr }, func(v S) {
		*ptr = v
		if onChange != nil {
			onChange(v)
		}
	})
}

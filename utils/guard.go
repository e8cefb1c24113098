package utils

// Guard runs a cleanup when a function that allocates something returns early with an error:
//
//	guard := NewGuard(func() { f.Close() })
//	defer guard.OnFail()
//	if err != nil { return err }
//	guard.Success()
type Guard struct {
	OnFail  func()
	success bool
}

// NewGuard returns a Guard that calls onFailCleanup from OnFail unless Success was called.
func NewGuard(onFailCleanup func()) *Guard {
	ret := &Guard{}
	ret.OnFail = func() {
		if !ret.success {
			onFailCleanup()
		}
	}
	return ret
}

// Success marks the guarded function as succeeded.
func (guard *Guard) Success() {
	guard.success = true
}

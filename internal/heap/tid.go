package heap

import "fmt"

// RID identifies one record: which page it lives on and which slot within
// that page.
type RID struct {
	Page uint32
	Slot uint16
}

func (r RID) String() string {
	return fmt.Sprintf("(%d,%d)", r.Page, r.Slot)
}

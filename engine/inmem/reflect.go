package inmem

import (
	"fmt"
	"reflect"
)

// copyInto assigns src to the value pointed to by dest via reflection. dest
// must be a non-nil pointer whose element type is assignable from src's type.
func copyInto(dest, src any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return fmt.Errorf("inmem engine: result destination must be a non-nil pointer")
	}
	sv := reflect.ValueOf(src)
	elem := dv.Elem()
	if !sv.Type().AssignableTo(elem.Type()) {
		return fmt.Errorf("inmem engine: cannot assign %s into %s", sv.Type(), elem.Type())
	}
	elem.Set(sv)
	return nil
}

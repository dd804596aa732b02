package layercanvas

import "reflect"

// shallowEqual compares a and b one level deep: struct fields, map values and array elements are compared by value for scalars and by identity for slices, maps, pointers and channels. Functions never compare equal unless both are nil. Pointers to structs are dereferenced once.
func shallowEqual(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	} else if va.Type() != vb.Type() {
		return false
	}

	if va.Kind() == reflect.Pointer {
		if va.Pointer() == vb.Pointer() {
			return true
		} else if va.IsNil() || vb.IsNil() || va.Elem().Kind() != reflect.Struct {
			return false
		}
		va, vb = va.Elem(), vb.Elem()
	}

	switch va.Kind() {
	case reflect.Struct:
		for i := 0; i < va.NumField(); i++ {
			if !identical(va.Field(i), vb.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Map:
		if va.Len() != vb.Len() {
			return false
		} else if va.Pointer() == vb.Pointer() {
			return true
		}
		iter := va.MapRange()
		for iter.Next() {
			w := vb.MapIndex(iter.Key())
			if !w.IsValid() || !identical(iter.Value(), w) {
				return false
			}
		}
		return true
	}
	return identical(va, vb)
}

// identical compares scalars by value and reference types by identity. Nested structs and arrays are values in Go and are compared element by element.
func identical(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return a.Uint() == b.Uint()
	case reflect.Float32, reflect.Float64:
		return a.Float() == b.Float()
	case reflect.Complex64, reflect.Complex128:
		return a.Complex() == b.Complex()
	case reflect.String:
		return a.String() == b.String()
	case reflect.Slice:
		if a.IsNil() != b.IsNil() || a.Len() != b.Len() {
			return false
		}
		return a.Len() == 0 || a.Pointer() == b.Pointer()
	case reflect.Func:
		return a.IsNil() && b.IsNil()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		} else if a.Elem().Type() != b.Elem().Type() {
			return false
		}
		return identical(a.Elem(), b.Elem())
	case reflect.Array:
		for i := 0; i < a.Len(); i++ {
			if !identical(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !identical(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	}
	return false
}

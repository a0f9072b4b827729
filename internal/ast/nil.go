package ast

import "reflect"

// isNil treats typed nil pointers stored in an interface as absent.
func isNil(n any) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Code generated by hand. DO NOT EDIT.

package gen

type Stream struct{}

func (*Stream) Close() error { return nil }

func generated() {
	_ = &Stream{} // want "Closer from object creation is never closed"
}

// Code generated by hand. DO NOT EDIT.

package a

func generated() {
	open()
}

//go:build xdf_debug

package assert

const enabled = true

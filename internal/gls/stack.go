package gls

import "runtime"

func defaultStackFn(buf []byte) int {
	return runtime.Stack(buf, false)
}

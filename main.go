package main

import (
	"runtime"

	"github.com/mj1618/simu-bridge/cmd"
)

// The automation context must own the process main thread, so lock it before
// any goroutine can be scheduled onto it.
func init() {
	runtime.LockOSThread()
}

func main() {
	cmd.Execute()
}

package error

import (
	"fmt"
	"runtime"
	"strings"
)

// maxStackDepth bounds capture on exceptional paths.
const maxStackDepth = 64

// Stack is a captured call stack, most recent call first. Frames are resolved
// lazily, so capturing is cheap when the stack is never printed.
type Stack []uintptr

// Callers captures the current goroutine's stack. skip=0 starts at the
// function calling Callers, skip=1 at its caller, and so on.
func Callers(skip int) Stack {
	pc := make([]uintptr, maxStackDepth)

	// +2 skips runtime.Callers and Callers itself.
	n := runtime.Callers(skip+2, pc)
	if n == 0 {
		return nil
	}

	return Stack(pc[:n])
}

// Frames resolves the stack via runtime.CallersFrames, which expands inlined calls.
func (s Stack) Frames() []runtime.Frame {
	if len(s) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(s)
	out := make([]runtime.Frame, 0, len(s))

	for {
		fr, more := frames.Next()
		out = append(out, fr)

		if !more {
			break
		}
	}

	return out
}

// String renders one "function\n\tfile:line" entry per frame, like a panic trace.
func (s Stack) String() string {
	var sb strings.Builder

	for i, fr := range s.Frames() {
		if i > 0 {
			sb.WriteByte('\n')
		}

		fmt.Fprintf(&sb, "%s\n\t%s:%d", fr.Function, fr.File, fr.Line)
	}

	return sb.String()
}

package interp

import "github.com/kirin-lang/kirin/ir"

// State tracks the interpreter's live call stack.
type State struct {
	frames []*Frame
}

// Depth returns the current number of frames on the stack.
func (s *State) Depth() int { return len(s.frames) }

// PushFrame pushes frame onto the stack.
func (s *State) PushFrame(frame *Frame) { s.frames = append(s.frames, frame) }

// PopFrame pops and returns the top frame, or nil if the stack is empty.
func (s *State) PopFrame() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top
}

// CurrentFrame returns the top frame, or nil if the stack is empty.
func (s *State) CurrentFrame() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// FrameTrace returns a printable description of each live frame, innermost
// last, used by kerr.InterpreterError to attach a stack trace.
func (s *State) FrameTrace() []string {
	out := make([]string, len(s.frames))
	for i, f := range s.frames {
		name := "<callable>"
		if f.Method != nil {
			name = f.Method.String()
		}
		out[i] = name
	}
	return out
}

// Callable is anything the interpreter can call: an ir.Method (which
// initializes a fresh interpreter-level call) or a bare ir.Statement
// bearing CallableStmtInterface (which runs within the caller's existing
// call, e.g. an inlined region).
type Callable interface {
	callableStmt() *ir.Statement
}

type methodCallable struct{ m *ir.Method }

func (c methodCallable) callableStmt() *ir.Statement { return c.m.Code }

type stmtCallable struct{ s *ir.Statement }

func (c stmtCallable) callableStmt() *ir.Statement { return c.s }

// CallMethod wraps a Method as a Callable.
func CallMethod(m *ir.Method) Callable { return methodCallable{m: m} }

// CallStmt wraps a bare callable Statement as a Callable.
func CallStmt(s *ir.Statement) Callable { return stmtCallable{s: s} }

package analysis

import (
	"github.com/rlch/dcl"
)

// frame is one level of the scope stack: the receiver of a block and the local
// values declared in it so far.
type frame struct {
	receiver *ImplicitReceiver
	locals   map[string]*local
}

type local struct {
	decl  dcl.NodeID
	value Origin
}

// scope is the stack of frames, innermost last.
type scope struct {
	frames []*frame
}

func newScope(root *ImplicitReceiver) *scope {
	s := &scope{}
	s.push(root)

	return s
}

func (s *scope) push(receiver *ImplicitReceiver) {
	s.frames = append(s.frames, &frame{receiver: receiver, locals: make(map[string]*local)})
}

func (s *scope) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *scope) current() *frame {
	return s.frames[len(s.frames)-1]
}

// depth is 0 at the top level.
func (s *scope) depth() int {
	return len(s.frames) - 1
}

// declared reports whether name is bound in the innermost frame.
func (s *scope) declared(name string) bool {
	_, ok := s.current().locals[name]

	return ok
}

// bind makes name visible to every statement after the current one in this
// frame and in frames pushed later.
func (s *scope) bind(name string, decl dcl.NodeID, value Origin) {
	s.current().locals[name] = &local{decl: decl, value: value}
}

// lookupLocal searches the frames innermost-out.
func (s *scope) lookupLocal(name string) *local {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if l, ok := s.frames[i].locals[name]; ok {
			return l
		}
	}

	return nil
}

// receivers returns the receiver chain, innermost first.
func (s *scope) receivers() []*ImplicitReceiver {
	out := make([]*ImplicitReceiver, 0, len(s.frames))
	for i := len(s.frames) - 1; i >= 0; i-- {
		out = append(out, s.frames[i].receiver)
	}

	return out
}

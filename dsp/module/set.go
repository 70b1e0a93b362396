package module

import "fmt"

// ParamSet is an ordered collection of parameters addressable by id.
type ParamSet struct {
	params []*Param
	byID   map[string]*Param
}

// NewParamSet builds a set. Duplicate ids are a programming error.
func NewParamSet(params ...*Param) *ParamSet {
	s := &ParamSet{byID: make(map[string]*Param, len(params))}
	for _, p := range params {
		s.add(p)
	}
	return s
}

func (s *ParamSet) add(p *Param) {
	if _, dup := s.byID[p.ID]; dup {
		panic(fmt.Sprintf("module: duplicate parameter id %q", p.ID))
	}
	s.params = append(s.params, p)
	s.byID[p.ID] = p
}

// All returns the parameters in declaration order. Callers must not
// modify the slice.
func (s *ParamSet) All() []*Param { return s.params }

// Len returns the number of parameters.
func (s *ParamSet) Len() int { return len(s.params) }

// Get returns the parameter with the given id, or nil.
func (s *ParamSet) Get(id string) *Param { return s.byID[id] }

// ResetAll restores every default.
func (s *ParamSet) ResetAll() {
	for _, p := range s.params {
		p.Reset()
	}
}

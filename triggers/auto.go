package triggers

import (
	"sort"

	"github.com/deepnoodle-ai/soir/sst"
)

// candidate is a term the automatic search may use as part of a trigger.
type candidate struct {
	term sst.Exp
	vars map[string]bool
	size int
}

// candidates collects the admissible trigger terms of body in preorder.
// Terms under nested binders are not considered, and terms equal to an
// earlier one are dropped.
func (s *Selector) candidates(binders []sst.Binder[sst.Typ], body sst.Exp) []candidate {
	bound := boundSet(binders)
	lets := letVars(body)
	seen := map[string]bool{}
	var out []candidate
	sst.Inspect(body, func(n sst.Node) bool {
		e, ok := n.(sst.Exp)
		if !ok {
			return true
		}
		if b, ok := e.(*sst.Bind); ok {
			_, isLet := b.Bnd.(*sst.Let)
			return isLet
		}
		if !s.autoShape(e) {
			return true
		}
		key := e.String()
		if seen[key] {
			return true
		}
		if checkForms(e) != nil {
			return true
		}
		if _, ok := mentionsLet(e, lets, bound); ok {
			return true
		}
		occ := newOccurrences()
		occ.collect(e, bound, false)
		if _, conflict := occ.conflict(binders); conflict {
			return true
		}
		vars := map[string]bool{}
		for _, b := range binders {
			if occ.covers(b.Name) {
				vars[b.Name] = true
			}
		}
		if len(vars) == 0 {
			return true
		}
		seen[key] = true
		out = append(out, candidate{term: e, vars: vars, size: size(e)})
		return true
	})
	return out
}

// autoShape reports whether e may be chosen automatically: a call to a
// function not marked no_auto_trigger, a higher-order call or a field
// access. Arithmetic is only used when marked by hand.
func (s *Selector) autoShape(e sst.Exp) bool {
	switch x := e.(type) {
	case *sst.Call:
		return !s.noAuto[x.Fun]
	case *sst.CallLambda:
		return true
	case *sst.UnaryOpr:
		return x.Op.IsFieldAccess()
	}
	return false
}

func size(e sst.Exp) int {
	n := 0
	for range sst.Preorder(e) {
		n++
	}
	return n
}

// group is a candidate trigger group.
type group struct {
	terms []candidate
	size  int
}

func (g group) trig() sst.Trig {
	out := make(sst.Trig, len(g.terms))
	for i, c := range g.terms {
		out[i] = c.term
	}
	return out
}

// search returns every admissible group of the smallest possible number of
// terms, best first. Smaller terms rank higher; ties keep source order.
func (s *Selector) search(binders []sst.Binder[sst.Typ], body sst.Exp) []group {
	cands := s.candidates(binders, body)
	limit := s.maxTerms
	if limit > len(cands) {
		limit = len(cands)
	}
	for k := 1; k <= limit; k++ {
		var found []group
		combinations(len(cands), k, func(idx []int) {
			terms := make([]candidate, k)
			covered := map[string]bool{}
			total := 0
			for i, j := range idx {
				terms[i] = cands[j]
				total += cands[j].size
				for v := range cands[j].vars {
					covered[v] = true
				}
			}
			if len(covered) != len(binders) {
				return
			}
			g := group{terms: terms, size: total}
			if ValidateGroup(binders, body, g.trig()) != nil {
				return
			}
			found = append(found, g)
		})
		if len(found) > 0 {
			sort.SliceStable(found, func(i, j int) bool {
				return found[i].size < found[j].size
			})
			return found
		}
	}
	return nil
}

// combinations calls f with every increasing k-subset of 0..n-1, in
// lexicographic order.
func combinations(n, k int, f func([]int)) {
	idx := make([]int, k)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == k {
			f(idx)
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			idx[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
}

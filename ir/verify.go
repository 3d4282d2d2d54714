package ir

import "github.com/kirin-lang/kirin/kerr"

// Verify walks stmt and checks the structural invariants from spec.md §3
// and §4.2: terminator discipline, declared region counts, and every
// trait's own VerifyStmt hook.
func Verify(stmt *Statement) error {
	var firstErr error
	Walk(stmt, func(s *Statement) {
		if firstErr != nil {
			return
		}
		if err := verifyOne(s); err != nil {
			firstErr = err
		}
	})
	return firstErr
}

func verifyOne(s *Statement) error {
	if want := s.Kind.NumRegions(); want >= 0 && len(s.Regions) != want {
		return kerr.NewVerificationError(s.Kind.Name(), "declared region count mismatch")
	}
	for _, r := range s.Regions {
		if err := verifyTerminatorDiscipline(s, r); err != nil {
			return err
		}
	}
	for _, tr := range s.Kind.Traits() {
		if v, ok := tr.(Verifier); ok {
			if err := v.VerifyStmt(s); err != nil {
				return err
			}
		}
	}
	return nil
}

func verifyTerminatorDiscipline(owner *Statement, r *Region) error {
	if r.NoTerminatorRegion() {
		return nil
	}
	for _, b := range r.Blocks {
		if b.IsEmpty() {
			return kerr.NewVerificationError(owner.Kind.Name(), "block has no terminator")
		}
		for s := b.FirstStmt(); s != nil; s = s.Next() {
			_, isTerm := HasStmtTrait[IsTerminatorTrait](s)
			if isTerm && s != b.LastStmt() {
				return kerr.NewVerificationError(s.Kind.Name(), "terminator is not the last statement of its block")
			}
			if !isTerm && s == b.LastStmt() {
				return kerr.NewVerificationError(owner.Kind.Name(), "block does not end in a terminator")
			}
		}
	}
	return nil
}

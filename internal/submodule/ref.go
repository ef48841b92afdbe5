package submodule

import "github.com/go-git/go-git/v5/plumbing"

// RefKind distinguishes refs that need no lookup from ones that do.
type RefKind int

const (
	// SymbolicRef names a branch, tag, HEAD, or any other revision that must
	// be resolved against a repository.
	SymbolicRef RefKind = iota
	// ExplicitSHA is a full 40-hex object id and is used as-is.
	ExplicitSHA
)

func (k RefKind) String() string {
	if k == ExplicitSHA {
		return "sha"
	}
	return "symbolic"
}

// Classify reports whether ref is a full object id.
func Classify(ref string) RefKind {
	if plumbing.IsHash(ref) {
		return ExplicitSHA
	}
	return SymbolicRef
}

package wer

// Op is one alignment step.
type Op byte

const (
	// OpNone marks the origin cell, where the backtrace stops.
	OpNone Op = iota
	// OpMatch pairs equal reference and hypothesis tokens.
	OpMatch
	// OpSubstitution pairs a reference token with a different hypothesis token.
	OpSubstitution
	// OpDeletion consumes a reference token with no hypothesis counterpart.
	OpDeletion
	// OpInsertion consumes a hypothesis token with no reference counterpart.
	OpInsertion
)

// String returns the one-letter code used in alignment dumps.
func (o Op) String() string {
	switch o {
	case OpMatch:
		return "M"
	case OpSubstitution:
		return "S"
	case OpDeletion:
		return "D"
	case OpInsertion:
		return "I"
	default:
		return "-"
	}
}

// Report holds alignment counts. ReferenceLength equals
// Substitutions + Deletions + Matches.
type Report struct {
	Substitutions   int `json:"substitutions"`
	Deletions       int `json:"deletions"`
	Insertions      int `json:"insertions"`
	Matches         int `json:"matches"`
	ReferenceLength int `json:"reference_length"`
}

// Errors returns S + D + I.
func (r Report) Errors() int {
	return r.Substitutions + r.Deletions + r.Insertions
}

// WER returns (S + D + I) / N, or 0 when the reference is empty.
func (r Report) WER() float64 {
	if r.ReferenceLength == 0 {
		return 0
	}
	return float64(r.Errors()) / float64(r.ReferenceLength)
}

// Score tokenizes both texts and aligns them.
func Score(reference, hypothesis string) Report {
	return Align(Tokenize(reference), Tokenize(hypothesis))
}

// Align computes the edit-distance alignment of hyp against ref and counts the
// operations on the backtrace.
func Align(ref, hyp []string) Report {
	ops := Backtrace(ref, hyp)
	report := Report{ReferenceLength: len(ref)}
	for _, op := range ops {
		switch op {
		case OpMatch:
			report.Matches++
		case OpSubstitution:
			report.Substitutions++
		case OpDeletion:
			report.Deletions++
		case OpInsertion:
			report.Insertions++
		}
	}
	return report
}

// Backtrace returns the alignment operations from the start of both sequences
// to the end. On equal cost a substitution or match wins over a deletion, and
// a deletion wins over an insertion.
func Backtrace(ref, hyp []string) []Op {
	rows, cols := len(ref)+1, len(hyp)+1
	cost := make([]int, rows*cols)
	op := make([]Op, rows*cols)
	at := func(i, j int) int { return i*cols + j }

	for i := 1; i < rows; i++ {
		cost[at(i, 0)] = i
		op[at(i, 0)] = OpDeletion
	}
	for j := 1; j < cols; j++ {
		cost[at(0, j)] = j
		op[at(0, j)] = OpInsertion
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			diagOp, diag := OpMatch, cost[at(i-1, j-1)]
			if ref[i-1] != hyp[j-1] {
				diagOp, diag = OpSubstitution, diag+1
			}
			del := cost[at(i-1, j)] + 1
			ins := cost[at(i, j-1)] + 1

			best, bestOp := diag, diagOp
			if del < best {
				best, bestOp = del, OpDeletion
			}
			if ins < best {
				best, bestOp = ins, OpInsertion
			}
			cost[at(i, j)] = best
			op[at(i, j)] = bestOp
		}
	}

	path := make([]Op, 0, max(len(ref), len(hyp)))
	i, j := len(ref), len(hyp)
	for i > 0 || j > 0 {
		step := op[at(i, j)]
		path = append(path, step)
		switch step {
		case OpMatch, OpSubstitution:
			i--
			j--
		case OpDeletion:
			i--
		case OpInsertion:
			j--
		}
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path
}

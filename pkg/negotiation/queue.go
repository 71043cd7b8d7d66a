package negotiation

import "github.com/hashicorp/go-multierror"

// CandidateQueue buffers remote candidates until both descriptions of
// a connection are set. It is drained at most once and never refilled.
// The queue is not safe for concurrent use.
type CandidateQueue struct {
	items   []Candidate
	drained bool
}

func NewCandidateQueue() *CandidateQueue { return &CandidateQueue{} }

// Enqueue appends c to the queue or returns ErrDrained
// when the candidate should be applied directly.
func (q *CandidateQueue) Enqueue(c Candidate) error {
	if q.drained {
		return ErrDrained
	}
	q.items = append(q.items, c)
	return nil
}

// DrainInto applies all queued candidates in the order of arrival
// and marks the queue drained.
// A failed candidate doesn't stop the rest from being applied,
// all the errors are returned together.
func (q *CandidateQueue) DrainInto(apply func(Candidate) error) (n int, err error) {
	if q.drained {
		return 0, ErrDrained
	}
	q.drained = true
	items := q.items
	q.items = nil

	var result *multierror.Error
	for _, c := range items {
		if e := apply(c); e != nil {
			result = multierror.Append(result, e)
		}
	}
	return len(items), result.ErrorOrNil()
}

func (q *CandidateQueue) Drained() bool { return q.drained }
func (q *CandidateQueue) Len() int      { return len(q.items) }

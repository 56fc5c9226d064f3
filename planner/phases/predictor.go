package phases

import (
	"errors"

	"github.com/cloud-lever/roap/types"
)

/*Predictor produces the workload tuple expected for each future timeslot,
one tuple per call, in timeslot order. A predictor is finite and cannot be
restarted: the period solver drains it*/
type Predictor interface {
	Next() ([]int, bool)
}

/*OmniscientPredictor replays workloads which are known in advance for the
whole reservation period, yielding one tuple per timeslot*/
type OmniscientPredictor struct {
	workloads []*types.Workload
	timeslots int
	index     int
}

/* Build a predictor over known workloads
	in:
		@workloads	one workload per app, all with the same length
	out:
		@OmniscientPredictor
		@error if the workloads are empty or have different lengths
*/
func NewOmniscientPredictor(workloads []*types.Workload) (*OmniscientPredictor, error) {
	if len(workloads) == 0 {
		return nil, errors.New("cannot predict without workloads")
	}
	timeslots := len(workloads[0].Values)
	for _, workload := range workloads {
		if len(workload.Values) != timeslots {
			return nil, errors.New("all workloads should have the same length")
		}
	}
	return &OmniscientPredictor{workloads: workloads, timeslots: timeslots}, nil
}

//Next returns the tuple of the next timeslot, or false when the period is over
func (p *OmniscientPredictor) Next() ([]int, bool) {
	if p.index >= p.timeslots {
		return nil, false
	}
	tuple := make([]int, len(p.workloads))
	for a, workload := range p.workloads {
		tuple[a] = workload.Values[p.index]
	}
	p.index++
	return tuple, true
}

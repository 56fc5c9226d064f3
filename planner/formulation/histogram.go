package formulation

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/cloud-lever/roap/types"
)

/*LoadHistogram is the compressed representation of a multi-app workload:
the unique per-timeslot workload tuples, how many timeslots share each one,
and the position in Levels of the tuple observed at every timeslot.
Levels are sorted in ascending lexicographic order*/
type LoadHistogram struct {
	Levels  [][]int
	Repeats []int
	Index   []int
}

//Timeslots returns the total number of timeslots represented
func (h *LoadHistogram) Timeslots() int {
	total := 0
	for _, repeats := range h.Repeats {
		total += repeats
	}
	return total
}

/* Collapse the workload sequences into a histogram of unique load levels
	in:
		@workloads	one workload per app, all with the same length
	out:
		@LoadHistogram
		@error if the workloads are empty or have different lengths
*/
func BuildLoadHistogram(workloads []*types.Workload) (*LoadHistogram, error) {
	if len(workloads) == 0 {
		return nil, errors.New("cannot build a histogram without workloads")
	}
	timeslots := len(workloads[0].Values)
	for _, workload := range workloads {
		if len(workload.Values) != timeslots {
			return nil, errors.New("all workloads should have the same length")
		}
	}

	tuples := make([][]int, timeslots)
	for t := 0; t < timeslots; t++ {
		tuple := make([]int, len(workloads))
		for a, workload := range workloads {
			tuple[a] = workload.Values[t]
		}
		tuples[t] = tuple
	}

	counts := make(map[string]int)
	unique := make(map[string][]int)
	for _, tuple := range tuples {
		key := tupleKey(tuple)
		counts[key]++
		unique[key] = tuple
	}

	levels := make([][]int, 0, len(unique))
	for _, tuple := range unique {
		levels = append(levels, tuple)
	}
	sort.Slice(levels, func(i, j int) bool {
		return lexLess(levels[i], levels[j])
	})

	positions := make(map[string]int, len(levels))
	repeats := make([]int, len(levels))
	for l, level := range levels {
		key := tupleKey(level)
		positions[key] = l
		repeats[l] = counts[key]
	}

	index := make([]int, timeslots)
	for t, tuple := range tuples {
		index[t] = positions[tupleKey(tuple)]
	}

	return &LoadHistogram{Levels: levels, Repeats: repeats, Index: index}, nil
}

func lexLess(a []int, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func tupleKey(tuple []int) string {
	var key strings.Builder
	for i, value := range tuple {
		if i > 0 {
			key.WriteByte(',')
		}
		key.WriteString(strconv.Itoa(value))
	}
	return key.String()
}

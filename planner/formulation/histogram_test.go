package formulation

import (
	"reflect"
	"testing"

	"github.com/cloud-lever/roap/types"
)

func testWorkloads(valuesPerApp ...[]int) []*types.Workload {
	workloads := make([]*types.Workload, 0, len(valuesPerApp))
	for i, values := range valuesPerApp {
		app := &types.App{ID: string(rune('a'+i)) + "0"}
		workloads = append(workloads, &types.Workload{
			ID: "wl" + app.ID, App: app, TimeUnit: "h", Values: values,
		})
	}
	return workloads
}

func TestHistogramUniqueLevels(t *testing.T) {
	workloads := testWorkloads(
		[]int{30, 32, 30, 30},
		[]int{1003, 1200, 1194, 1003},
	)
	hist, err := BuildLoadHistogram(workloads)
	if err != nil {
		t.Fatal("For", "a valid workload", "expected", nil, "got", err)
	}
	expected := [][]int{{30, 1003}, {30, 1194}, {32, 1200}}
	if !reflect.DeepEqual(hist.Levels, expected) {
		t.Error(
			"For", "the unique levels in ascending order",
			"expected", expected,
			"got", hist.Levels,
		)
	}
	if !reflect.DeepEqual(hist.Repeats, []int{2, 1, 1}) {
		t.Error(
			"For", "the repetitions of each level",
			"expected", []int{2, 1, 1},
			"got", hist.Repeats,
		)
	}
}

func TestHistogramTotalTimeslots(t *testing.T) {
	workloads := testWorkloads(
		[]int{5, 5, 7, 5, 7, 9, 5},
		[]int{1, 1, 2, 1, 2, 3, 1},
	)
	hist, err := BuildLoadHistogram(workloads)
	if err != nil {
		t.Fatal("For", "a valid workload", "expected", nil, "got", err)
	}
	if hist.Timeslots() != 7 {
		t.Error(
			"For", "the sum of the repetitions",
			"expected", 7,
			"got", hist.Timeslots(),
		)
	}
}

func TestHistogramIndexReconstructsWorkload(t *testing.T) {
	values0 := []int{201, 203, 180, 220, 190, 211, 199, 204, 500, 200}
	values1 := []int{2010, 2035, 1807, 2202, 1910, 2110, 1985, 2033, 5050, 1992}
	workloads := testWorkloads(values0, values1)
	hist, err := BuildLoadHistogram(workloads)
	if err != nil {
		t.Fatal("For", "a valid workload", "expected", nil, "got", err)
	}
	for timeslot, position := range hist.Index {
		level := hist.Levels[position]
		if level[0] != values0[timeslot] || level[1] != values1[timeslot] {
			t.Error(
				"For", "the level indexed at timeslot", timeslot,
				"expected", []int{values0[timeslot], values1[timeslot]},
				"got", level,
			)
		}
	}
}

func TestHistogramRejectsUnevenLengths(t *testing.T) {
	workloads := testWorkloads(
		[]int{1, 2, 3},
		[]int{1, 2},
	)
	if _, err := BuildLoadHistogram(workloads); err == nil {
		t.Error(
			"For", "workloads with different lengths",
			"expected", "an error",
			"got", nil,
		)
	}
}

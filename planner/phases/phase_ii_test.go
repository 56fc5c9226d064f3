package phases

import (
	"reflect"
	"testing"

	"github.com/cloud-lever/roap/planner/formulation"
	"github.com/cloud-lever/roap/types"
)

//Predictor over a fixed list of tuples
type slicePredictor struct {
	tuples [][]int
	index  int
}

func (p *slicePredictor) Next() ([]int, bool) {
	if p.index >= len(p.tuples) {
		return nil, false
	}
	tuple := p.tuples[p.index]
	p.index++
	return tuple, true
}

//Problem with a single app and a single on-demand class capped at 2 VMs
func cappedProblem() *types.Problem {
	app := &types.App{ID: "a0"}
	cloud := &types.LimitingSet{ID: "Cloud1"}
	small := &types.InstanceClass{
		ID: "small", LimitingSets: []*types.LimitingSet{cloud},
		MaxVMs: 2, Price: 10, TimeUnit: "h", Cores: 1,
	}
	return &types.Problem{
		ID: "capped", Name: "capped",
		Workloads: []*types.Workload{
			{ID: "wl0", App: app, TimeUnit: "h", Values: []int{5}},
		},
		InstanceClasses: []*types.InstanceClass{small},
		Performances: &types.PerformanceSet{
			ID: "perf", TimeUnit: "h",
			Values: types.PerformanceValues{"small": {"a0": 10}},
		},
	}
}

func emptyReservedSolution(problem *types.Problem) *types.SolutionI {
	return &types.SolutionI{
		ID:                 "previous",
		Problem:            problem,
		ReservedAllocation: &types.ReservedAllocation{},
	}
}

func TestPhaseIIOverfullTimeslot(t *testing.T) {
	problem := cappedProblem()
	backendCalls := 0
	orchestrator := scriptedOrchestrator(&backendCalls,
		func(model *formulation.Model) (types.Status, []float64, float64) {
			if model.Sense == formulation.Minimize {
				return types.StatusInfeasible, nil, 0
			}
			// The fallback serves what the two capped VMs can
			return types.StatusOptimal, []float64{2}, 0.4
		})

	phaseII, err := NewPhaseII(problem, emptyReservedSolution(problem), orchestrator)
	if err != nil {
		t.Fatal("For", "a valid problem", "expected", nil, "got", err)
	}
	solution, err := phaseII.SolveTimeslot([]int{50})
	if err != nil {
		t.Fatal("For", "the overfull slot", "expected", nil, "got", err)
	}
	if solution.SolvingStats.Algorithm.Status != types.StatusOverfull {
		t.Error(
			"For", "the status",
			"expected", types.StatusOverfull,
			"got", solution.SolvingStats.Algorithm.Status,
		)
	}
	// Two backend acquisitions: the nominal model and the fallback one
	if backendCalls != 2 {
		t.Error(
			"For", "the backend calls",
			"expected", 2,
			"got", backendCalls,
		)
	}
	// The cost is the one of the allocation actually deployed
	if solution.SolvingStats.OptimalCost != 20 {
		t.Error(
			"For", "the cost of the overfull slot",
			"expected", 20,
			"got", solution.SolvingStats.OptimalCost,
		)
	}
	if solution.Allocation.Values[0][0][0] != 2 {
		t.Error(
			"For", "the allocation of the overfull slot",
			"expected", 2,
			"got", solution.Allocation.Values[0][0][0],
		)
	}
}

func TestPhaseIIAbortedDoesNotRetry(t *testing.T) {
	problem := cappedProblem()
	backendCalls := 0
	orchestrator := scriptedOrchestrator(&backendCalls,
		func(model *formulation.Model) (types.Status, []float64, float64) {
			return types.StatusAborted, nil, 0
		})

	phaseII, _ := NewPhaseII(problem, emptyReservedSolution(problem), orchestrator)
	solution, err := phaseII.SolveTimeslot([]int{5})
	if err != nil {
		t.Fatal("For", "an aborted slot", "expected", nil, "got", err)
	}
	if solution.SolvingStats.Algorithm.Status != types.StatusAborted {
		t.Error(
			"For", "the status",
			"expected", types.StatusAborted,
			"got", solution.SolvingStats.Algorithm.Status,
		)
	}
	if backendCalls != 1 {
		t.Error(
			"For", "the backend calls of an aborted slot",
			"expected", 1,
			"got", backendCalls,
		)
	}
}

func TestPhaseIIMemoizationCache(t *testing.T) {
	problem := cappedProblem()
	// A long period with only three distinct tuples
	tuples := make([][]int, 1000)
	for i := range tuples {
		tuples[i] = []int{10 * (i%3 + 1)}
	}
	problem.Workloads[0].Values = make([]int, 1000)
	for i := range tuples {
		problem.Workloads[0].Values[i] = tuples[i][0]
	}

	backendCalls := 0
	orchestrator := scriptedOrchestrator(&backendCalls,
		func(model *formulation.Model) (types.Status, []float64, float64) {
			return types.StatusOptimal, []float64{2}, 20
		})

	phaseII, err := NewPhaseII(problem, emptyReservedSolution(problem), orchestrator)
	if err != nil {
		t.Fatal("For", "a valid problem", "expected", nil, "got", err)
	}
	solution, err := phaseII.SolvePeriod(&slicePredictor{tuples: tuples})
	if err != nil {
		t.Fatal("For", "the period", "expected", nil, "got", err)
	}
	if backendCalls != 3 {
		t.Error(
			"For", "the backend calls of a period with 3 distinct tuples",
			"expected", 3,
			"got", backendCalls,
		)
	}
	if solution.GlobalSolvingStats.Status != types.StatusOptimal {
		t.Error(
			"For", "the global status",
			"expected", types.StatusOptimal,
			"got", solution.GlobalSolvingStats.Status,
		)
	}
	if len(solution.SolvingStats) != 1000 {
		t.Error(
			"For", "the per timeslot stats",
			"expected", 1000,
			"got", len(solution.SolvingStats),
		)
	}
}

func TestPhaseIICacheIdempotence(t *testing.T) {
	problem := cappedProblem()
	problem.Workloads[0].Values = []int{5, 5}
	backendCalls := 0
	orchestrator := scriptedOrchestrator(&backendCalls,
		func(model *formulation.Model) (types.Status, []float64, float64) {
			return types.StatusOptimal, []float64{1}, 10
		})

	phaseII, _ := NewPhaseII(problem, emptyReservedSolution(problem), orchestrator)
	first, err := phaseII.SolveTimeslot([]int{5})
	if err != nil {
		t.Fatal("For", "the first slot", "expected", nil, "got", err)
	}
	second, err := phaseII.SolveTimeslot([]int{5})
	if err != nil {
		t.Fatal("For", "the repeated slot", "expected", nil, "got", err)
	}
	if !reflect.DeepEqual(first.Allocation, second.Allocation) {
		t.Error(
			"For", "the allocation of a repeated tuple",
			"expected", first.Allocation,
			"got", second.Allocation,
		)
	}
	if second.SolvingStats.SolvingTime != 0 {
		t.Error(
			"For", "the solving time of a memoized slot",
			"expected", 0,
			"got", second.SolvingStats.SolvingTime,
		)
	}
	if first.SolvingStats.Algorithm.Status != second.SolvingStats.Algorithm.Status {
		t.Error(
			"For", "the status of a memoized slot",
			"expected", first.SolvingStats.Algorithm.Status,
			"got", second.SolvingStats.Algorithm.Status,
		)
	}
	if backendCalls != 1 {
		t.Error(
			"For", "the backend calls",
			"expected", 1,
			"got", backendCalls,
		)
	}
}

func TestPhaseIIGlobalStatusWorstCase(t *testing.T) {
	problem := cappedProblem()
	problem.Workloads[0].Values = []int{5, 50}
	calls := 0
	orchestrator := scriptedOrchestrator(&calls,
		func(model *formulation.Model) (types.Status, []float64, float64) {
			// Every model, nominal or fallback, comes out infeasible
			if model.Sense == formulation.Minimize {
				return types.StatusInfeasible, nil, 0
			}
			return types.StatusInfeasible, nil, 0
		})

	phaseII, _ := NewPhaseII(problem, emptyReservedSolution(problem), orchestrator)
	solution, err := phaseII.SolvePeriod(nil)
	if err != nil {
		t.Fatal("For", "the period", "expected", nil, "got", err)
	}
	if solution.GlobalSolvingStats.Status != types.StatusInfeasible {
		t.Error(
			"For", "the global status with infeasible slots",
			"expected", types.StatusInfeasible,
			"got", solution.GlobalSolvingStats.Status,
		)
	}
}

func TestPhaseIIGlobalStatusOverfull(t *testing.T) {
	problem := cappedProblem()
	problem.Workloads[0].Values = []int{5, 50}
	calls := 0
	orchestrator := scriptedOrchestrator(&calls,
		func(model *formulation.Model) (types.Status, []float64, float64) {
			if model.Sense == formulation.Maximize {
				return types.StatusOptimal, []float64{2}, 0.4
			}
			// The second tuple cannot be served
			if model.Constraints[0].RHS == 50 {
				return types.StatusInfeasible, nil, 0
			}
			return types.StatusOptimal, []float64{1}, 10
		})

	phaseII, _ := NewPhaseII(problem, emptyReservedSolution(problem), orchestrator)
	solution, err := phaseII.SolvePeriod(nil)
	if err != nil {
		t.Fatal("For", "the period", "expected", nil, "got", err)
	}
	if solution.GlobalSolvingStats.Status != types.StatusOverfull {
		t.Error(
			"For", "the global status with an overfull slot",
			"expected", types.StatusOverfull,
			"got", solution.GlobalSolvingStats.Status,
		)
	}
	// The costs of the good slot and the overfull one are added up
	if solution.GlobalSolvingStats.OptimalCost != 30 {
		t.Error(
			"For", "the global cost",
			"expected", 30,
			"got", solution.GlobalSolvingStats.OptimalCost,
		)
	}
}

func TestPhaseIIRequiresReservedAllocation(t *testing.T) {
	problem := cappedProblem()
	if _, err := NewPhaseII(problem, &types.SolutionI{}, nil); err == nil {
		t.Error(
			"For", "a previous phase without reserved allocation",
			"expected", "an error",
			"got", nil,
		)
	}
}

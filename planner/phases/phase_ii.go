package phases

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cnf/structhash"

	"github.com/cloud-lever/roap/planner/formulation"
	"github.com/cloud-lever/roap/solver"
	"github.com/cloud-lever/roap/types"
)

/*PhaseII solves the allocation of the single timeslots of the reservation
period, reusing the reserved VMs decided in Phase I as fixed parameters.
Timeslots which share the same workload tuple are solved only once: the
solutions are memoized in a cache owned by this instance*/
type PhaseII struct {
	problem       *types.Problem
	previousPhase *types.SolutionI
	orchestrator  *solver.Orchestrator
	guided        map[string]map[string]int
	system        *types.System
	slotUnit      string
	cache         map[string]*types.SolutionI
}

/* Build the Phase II driver
	in:
		@problem	the problem to solve, usually the same of Phase I
		@previousPhase	the Phase I solution holding the reserved allocation
		@orchestrator	the solver boundary to use
	out:
		@PhaseII
		@error if the problem is inconsistent or the previous phase brings
			no reserved allocation
*/
func NewPhaseII(problem *types.Problem, previousPhase *types.SolutionI,
	orchestrator *solver.Orchestrator) (*PhaseII, error) {
	return NewPhaseIIGuided(problem, previousPhase, orchestrator, nil)
}

/* Build a Phase II driver which additionally keeps at least the given
number of VMs running for each instance class and app
	in:
		@guided	lower bounds indexed by instance class id and app id
	out:
		@PhaseII
		@error as in NewPhaseII
*/
func NewPhaseIIGuided(problem *types.Problem, previousPhase *types.SolutionI,
	orchestrator *solver.Orchestrator, guided map[string]map[string]int) (*PhaseII, error) {

	if err := types.CheckValidProblem(problem); err != nil {
		return nil, err
	}
	if previousPhase == nil || previousPhase.ReservedAllocation == nil {
		return nil, errors.New("the previous phase brings no reserved allocation")
	}
	return &PhaseII{
		problem:       problem,
		previousPhase: previousPhase,
		orchestrator:  orchestrator,
		guided:        guided,
		system:        types.SystemFromProblem(problem),
		slotUnit:      problem.Workloads[0].TimeUnit,
		cache:         make(map[string]*types.SolutionI),
	}, nil
}

/* Solve the allocation of one timeslot
	in:
		@loadLevel	the workload tuple predicted for the slot, one value
			per app in workload order
	out:
		@SolutionI	the allocation and stats for the slot. When the tuple
			was already solved the memoized solution is returned, with a
			solving time of zero
		@error	only for structural failures
*/
func (p *PhaseII) SolveTimeslot(loadLevel []int) (*types.SolutionI, error) {
	if len(loadLevel) != len(p.system.Apps) {
		return nil, fmt.Errorf("the workload tuple has %d values for %d apps",
			len(loadLevel), len(p.system.Apps))
	}
	key, err := structhash.Hash(struct{ Tuple []int }{loadLevel}, 1)
	if err != nil {
		return nil, err
	}
	if cached, ok := p.cache[key]; ok {
		hit := *cached
		hit.SolvingStats.SolvingTime = 0
		return &hit, nil
	}

	solution, err := p.solveTimeslotUncached(loadLevel)
	if err != nil {
		return nil, err
	}
	p.cache[key] = solution
	return solution, nil
}

func (p *PhaseII) solveTimeslotUncached(loadLevel []int) (*types.SolutionI, error) {
	spec := &formulation.TimeslotSpec{
		System:    p.system,
		SlotUnit:  p.slotUnit,
		LoadLevel: loadLevel,
		Reserved:  p.previousPhase.ReservedAllocation,
		Guided:    p.guided,
	}
	model, vars, err := formulation.BuildTimeslotModel(spec)
	if err != nil {
		return nil, err
	}
	result, err := p.orchestrator.Solve(model)
	if err != nil {
		return nil, err
	}

	stats := types.SolvingStats{
		CreationTime: result.CreationTime,
		SolvingTime:  result.SolvingTime,
		Algorithm: types.AlgorithmStats{
			Name:          "timeslot-cost-minimization",
			Status:        result.Status,
			GcdMultiplier: 1,
			FracGap:       p.orchestrator.Config.FracGap,
			MaxSeconds:    p.orchestrator.Config.MaxSeconds,
		},
	}

	solution := &types.SolutionI{
		ID:                 timeslotSolutionID(loadLevel),
		Problem:            p.problem,
		SolvingStats:       stats,
		ReservedAllocation: p.previousPhase.ReservedAllocation,
	}

	switch result.Status {
	case types.StatusOptimal:
		solution.SolvingStats.OptimalCost = result.Objective
		solution.Allocation = extractTimeslotAllocation(vars, loadLevel, result.Values)
	case types.StatusInfeasible, types.StatusIntegerInfeasible:
		// The workload cannot be served within the limits: fall back to
		// serving as much of it as possible
		log.Warning("Timeslot %v is not feasible, maximizing the served workload", loadLevel)
		if err := p.solveOverfullTimeslot(spec, solution); err != nil {
			return nil, err
		}
	default:
		log.Warning("Timeslot %v finished with status %s", loadLevel, result.Status)
	}
	return solution, nil
}

//Solve the fallback model for an infeasible timeslot. The solution is
//updated in place: times are accumulated and, when the fallback finds an
//optimum, the status becomes overfull and the cost is the one of the
//allocation actually deployed
func (p *PhaseII) solveOverfullTimeslot(spec *formulation.TimeslotSpec,
	solution *types.SolutionI) error {

	fallback := &formulation.TimeslotSpec{
		System:              spec.System,
		SlotUnit:            spec.SlotUnit,
		LoadLevel:           spec.LoadLevel,
		Reserved:            spec.Reserved,
		MaximizePerformance: true,
	}
	model, vars, err := formulation.BuildTimeslotModel(fallback)
	if err != nil {
		return err
	}
	result, err := p.orchestrator.Solve(model)
	if err != nil {
		return err
	}
	solution.SolvingStats.CreationTime += result.CreationTime
	solution.SolvingStats.SolvingTime += result.SolvingTime
	if result.Status != types.StatusOptimal {
		solution.SolvingStats.Algorithm.Status = result.Status
		return nil
	}
	solution.SolvingStats.Algorithm.Status = types.StatusOverfull
	solution.SolvingStats.Algorithm.Name = "timeslot-performance-maximization"
	solution.Allocation = extractTimeslotAllocation(vars, spec.LoadLevel, result.Values)
	table, err := formulation.BuildPriceTable(spec.System, spec.SlotUnit, 1)
	if err != nil {
		return err
	}
	solution.SolvingStats.OptimalCost = formulation.TimeslotCost(
		vars, table, spec.FixedReserved(), solution.Allocation.Values[0])
	return nil
}

/* Solve every timeslot of the reservation period
	in:
		@predictor	producer of the workload tuples, one per timeslot; nil
			to replay the workloads stored in the problem
	out:
		@SolutionII	per timeslot stats and allocation plus their aggregation
		@error	only for structural failures
*/
func (p *PhaseII) SolvePeriod(predictor Predictor) (*types.SolutionII, error) {
	if predictor == nil {
		replay, err := NewOmniscientPredictor(p.problem.Workloads)
		if err != nil {
			return nil, err
		}
		predictor = replay
	}
	solutions := make([]*types.SolutionI, 0)
	for {
		loadLevel, ok := predictor.Next()
		if !ok {
			break
		}
		solution, err := p.SolveTimeslot(loadLevel)
		if err != nil {
			return nil, err
		}
		solutions = append(solutions, solution)
	}
	if len(solutions) == 0 {
		return nil, errors.New("the predictor yielded no timeslots")
	}
	return p.aggregateSolutions(solutions), nil
}

//Build the global solution of the period from the per timeslot ones
func (p *PhaseII) aggregateSolutions(solutions []*types.SolutionI) *types.SolutionII {
	global := types.GlobalSolvingStats{Status: globalStatus(solutions)}
	stats := make([]types.SolvingStats, 0, len(solutions))
	for _, solution := range solutions {
		global.CreationTime += solution.SolvingStats.CreationTime
		global.SolvingTime += solution.SolvingStats.SolvingTime
		global.OptimalCost += solution.SolvingStats.OptimalCost
		stats = append(stats, solution.SolvingStats)
	}

	allocation := &types.AllocationInfo{
		Apps:            p.system.Apps,
		InstanceClasses: p.system.InstanceClasses,
		Units:           "vms",
	}
	for _, solution := range solutions {
		allocation.Repeats = append(allocation.Repeats, 1)
		if solution.Allocation == nil {
			allocation.WorkloadTuples = append(allocation.WorkloadTuples, nil)
			allocation.Values = append(allocation.Values, emptyTimeslotValues(p.system))
			continue
		}
		allocation.WorkloadTuples = append(allocation.WorkloadTuples,
			solution.Allocation.WorkloadTuples[0])
		allocation.Values = append(allocation.Values, solution.Allocation.Values[0])
	}

	return &types.SolutionII{
		ID:                 fmt.Sprintf("solution_phase_ii_%s", p.problem.ID),
		Problem:            p.problem,
		PreviousPhase:      p.previousPhase,
		SolvingStats:       stats,
		GlobalSolvingStats: global,
		Allocation:         allocation,
	}
}

func globalStatus(solutions []*types.SolutionI) types.Status {
	allOptimal := true
	anyInfeasible := false
	anyOverfull := false
	for _, solution := range solutions {
		switch solution.SolvingStats.Algorithm.Status {
		case types.StatusOptimal:
		case types.StatusInfeasible, types.StatusIntegerInfeasible:
			allOptimal = false
			anyInfeasible = true
		case types.StatusOverfull:
			allOptimal = false
			anyOverfull = true
		default:
			allOptimal = false
		}
	}
	switch {
	case allOptimal:
		return types.StatusOptimal
	case anyInfeasible:
		return types.StatusInfeasible
	case anyOverfull:
		return types.StatusOverfull
	}
	return types.StatusUnknown
}

func extractTimeslotAllocation(vars *formulation.PhaseIIVars, loadLevel []int,
	values []int) *types.AllocationInfo {

	slot := make([][]int, len(vars.InstanceClasses))
	for k := range vars.InstanceClasses {
		slot[k] = make([]int, len(vars.Apps))
		for a := range vars.Apps {
			slot[k][a] = values[vars.X[k][a]]
		}
	}
	return &types.AllocationInfo{
		Apps:            vars.Apps,
		InstanceClasses: vars.InstanceClasses,
		WorkloadTuples:  [][]int{loadLevel},
		Repeats:         []int{1},
		Values:          [][][]int{slot},
		Units:           "vms",
	}
}

func emptyTimeslotValues(system *types.System) [][]int {
	values := make([][]int, len(system.InstanceClasses))
	for k := range system.InstanceClasses {
		values[k] = make([]int, len(system.Apps))
	}
	return values
}

func timeslotSolutionID(loadLevel []int) string {
	parts := make([]string, 0, len(loadLevel))
	for _, value := range loadLevel {
		parts = append(parts, strconv.Itoa(value))
	}
	return "sol_for_" + strings.Join(parts, "_")
}

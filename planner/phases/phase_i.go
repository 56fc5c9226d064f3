package phases

import (
	"fmt"

	"github.com/op/go-logging"

	"github.com/cloud-lever/roap/planner/formulation"
	"github.com/cloud-lever/roap/solver"
	"github.com/cloud-lever/roap/types"
)

var log = logging.MustGetLogger("roap")

/*PhaseI drives the solver for the first phase of the method: a single
optimization over the whole reservation period which decides how many
reserved VMs to purchase and the best allocation for each load level*/
type PhaseI struct {
	problem      *types.Problem
	orchestrator *solver.Orchestrator
	solution     *types.SolutionI
}

/* Build the Phase I driver
	in:
		@problem	the problem to solve
		@orchestrator	the solver boundary to use
	out:
		@PhaseI
		@error if the problem stores inconsistent information
*/
func NewPhaseI(problem *types.Problem, orchestrator *solver.Orchestrator) (*PhaseI, error) {
	if err := types.CheckValidProblem(problem); err != nil {
		return nil, err
	}
	return &PhaseI{problem: problem, orchestrator: orchestrator}, nil
}

//Solution returns the stored solution, nil if Solve has not been called
func (p *PhaseI) Solution() *types.SolutionI {
	return p.solution
}

/* Create the optimization problem for the whole period, solve it and pack
the solution
	in:
		@useGcd	whether to rescale the coefficients by their common divisor
	out:
		@SolutionI	with solving stats, reserved allocation and per level
			allocation; non-optimal terminations are reported through the
			stats status, with empty allocations
		@error	only for structural failures
*/
func (p *PhaseI) Solve(useGcd bool) (*types.SolutionI, error) {
	system := types.SystemFromProblem(p.problem)
	slotUnit := p.problem.Workloads[0].TimeUnit
	hist, err := formulation.BuildLoadHistogram(p.problem.Workloads)
	if err != nil {
		return nil, err
	}

	stats := types.SolvingStats{
		Algorithm: types.AlgorithmStats{
			Name:          "period-cost-minimization",
			Gcd:           false,
			GcdMultiplier: 1,
			FracGap:       p.orchestrator.Config.FracGap,
			MaxSeconds:    p.orchestrator.Config.MaxSeconds,
		},
	}

	if allZero(hist) {
		log.Info("All workloads are zero, skipping the solver")
		stats.Algorithm.Status = types.StatusTrivial
		p.solution = &types.SolutionI{
			ID:                 fmt.Sprintf("solution_i_%s", p.problem.ID),
			Problem:            p.problem,
			SolvingStats:       stats,
			ReservedAllocation: zeroReservedAllocation(system),
			Allocation:         zeroAllocation(system, hist),
		}
		return p.solution, nil
	}

	multiplier := 1
	if useGcd {
		multiplier = formulation.GcdMultiplier(p.problem)
	}
	stats.Algorithm.Gcd = multiplier > 1
	stats.Algorithm.GcdMultiplier = multiplier
	if multiplier > 1 {
		log.Info("Coefficients rescaled by their common divisor %d", multiplier)
	}

	model, vars, err := formulation.BuildPhaseIModel(system, slotUnit, hist, multiplier)
	if err != nil {
		return nil, err
	}
	log.Info("Solving phase I for problem %s: %d load levels, %d variables",
		p.problem.ID, len(hist.Levels), model.NumVariables())
	result, err := p.orchestrator.Solve(model)
	if err != nil {
		return nil, err
	}

	stats.CreationTime = result.CreationTime
	stats.SolvingTime = result.SolvingTime
	stats.Algorithm.Status = result.Status

	solution := &types.SolutionI{
		ID:           fmt.Sprintf("solution_i_%s", p.problem.ID),
		Problem:      p.problem,
		SolvingStats: stats,
	}
	if result.Status == types.StatusOptimal {
		solution.SolvingStats.OptimalCost = result.Objective
		solution.ReservedAllocation = extractReservedAllocation(vars, result.Values)
		solution.Allocation = extractAllocation(vars, hist, result.Values)
	} else {
		log.Warning("Phase I for problem %s finished with status %s",
			p.problem.ID, result.Status)
	}
	p.solution = solution
	return solution, nil
}

func allZero(hist *formulation.LoadHistogram) bool {
	for _, level := range hist.Levels {
		for _, value := range level {
			if value != 0 {
				return false
			}
		}
	}
	return true
}

//The reserved allocation reports the total number of VMs of each reserved
//class, summing the static per app split of the solution
func extractReservedAllocation(vars *formulation.PhaseIVars, values []int) *types.ReservedAllocation {
	allocation := &types.ReservedAllocation{}
	for _, iclass := range vars.Reserved {
		total := 0
		for _, yVar := range vars.Y[iclass.ID] {
			total += values[yVar]
		}
		allocation.InstanceClasses = append(allocation.InstanceClasses, iclass)
		allocation.VMsNumber = append(allocation.VMsNumber, total)
	}
	return allocation
}

func extractAllocation(vars *formulation.PhaseIVars, hist *formulation.LoadHistogram,
	values []int) *types.AllocationInfo {

	allocation := &types.AllocationInfo{
		Apps:            vars.Apps,
		InstanceClasses: vars.InstanceClasses,
		WorkloadTuples:  hist.Levels,
		Repeats:         hist.Repeats,
		Units:           "vms",
	}
	allocation.Values = make([][][]int, len(hist.Levels))
	for l := range hist.Levels {
		allocation.Values[l] = make([][]int, len(vars.InstanceClasses))
		for k := range vars.InstanceClasses {
			allocation.Values[l][k] = make([]int, len(vars.Apps))
			for a := range vars.Apps {
				allocation.Values[l][k][a] = values[vars.X[l][k][a]]
			}
		}
	}
	return allocation
}

func zeroReservedAllocation(system *types.System) *types.ReservedAllocation {
	allocation := &types.ReservedAllocation{}
	for _, iclass := range system.InstanceClasses {
		if iclass.IsReserved {
			allocation.InstanceClasses = append(allocation.InstanceClasses, iclass)
			allocation.VMsNumber = append(allocation.VMsNumber, 0)
		}
	}
	return allocation
}

func zeroAllocation(system *types.System, hist *formulation.LoadHistogram) *types.AllocationInfo {
	allocation := &types.AllocationInfo{
		Apps:            system.Apps,
		InstanceClasses: system.InstanceClasses,
		WorkloadTuples:  hist.Levels,
		Repeats:         hist.Repeats,
		Units:           "vms",
	}
	allocation.Values = make([][][]int, len(hist.Levels))
	for l := range hist.Levels {
		allocation.Values[l] = make([][]int, len(system.InstanceClasses))
		for k := range system.InstanceClasses {
			allocation.Values[l][k] = make([]int, len(system.Apps))
		}
	}
	return allocation
}

package server

import (
	"github.com/cloud-lever/roap/planner/phases"
	"github.com/cloud-lever/roap/solver"
	"github.com/cloud-lever/roap/types"
)

//Build the solver boundary with the settings of the configuration file
func newOrchestrator() *solver.Orchestrator {
	settings := systemConfiguration.SolverComponent
	return solver.NewOrchestrator(solver.Config{
		FracGap:    settings.FracGap,
		MaxSeconds: settings.MaxSeconds,
		Threads:    settings.Threads,
		Seed:       settings.Seed,
	})
}

func newPhaseI(problem *types.Problem, orchestrator *solver.Orchestrator) (*phases.PhaseI, error) {
	return phases.NewPhaseI(problem, orchestrator)
}

func newPhaseII(problem *types.Problem, solutionI *types.SolutionI,
	orchestrator *solver.Orchestrator) (*phases.PhaseII, error) {
	return phases.NewPhaseII(problem, solutionI, orchestrator)
}

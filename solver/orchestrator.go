package solver

import (
	"math"
	"time"

	"github.com/op/go-logging"

	"github.com/cloud-lever/roap/planner/formulation"
	"github.com/cloud-lever/roap/types"
)

var log = logging.MustGetLogger("roap")

/*Result of one solve: the termination status, the wall-clock times spent
building and solving the model, and (when a solution exists) the objective
value and the rounded integer value of every variable*/
type Result struct {
	Status       types.Status
	CreationTime float64
	SolvingTime  float64
	Objective    float64
	Values       []int
}

/*Orchestrator drives a backend: it translates the abstract model, times
the creation and solving stages separately, and reads back the solution.
One orchestrator can be reused for many solves; each solve acquires and
releases its own backend handle*/
type Orchestrator struct {
	NewBackend BackendFactory
	Config     Config
}

//NewOrchestrator builds an orchestrator over the default lp_solve backend
func NewOrchestrator(config Config) *Orchestrator {
	return &Orchestrator{NewBackend: NewGolpBackend, Config: config}
}

/* Solve an abstract model
	in:
		@model	the integer program to solve
	out:
		@Result	status, timing, objective and variable values
		@error	only for structural failures while loading the model;
			solver failures are reported through the status
*/
func (o *Orchestrator) Solve(model *formulation.Model) (*Result, error) {
	backend := o.NewBackend()
	defer backend.Release()

	start := time.Now()
	err := backend.LoadModel(model)
	creationTime := time.Since(start).Seconds()
	if err != nil {
		return nil, err
	}

	start = time.Now()
	status, err := backend.Solve(o.Config)
	solvingTime := time.Since(start).Seconds()
	result := &Result{
		Status:       status,
		CreationTime: creationTime,
		SolvingTime:  solvingTime,
	}
	if err != nil {
		log.Error("Backend %s failed after %.3f seconds: %s",
			backend.Name(), solvingTime, err.Error())
		result.Status = types.StatusCbcError
		return result, nil
	}
	if status != types.StatusOptimal {
		return result, nil
	}

	objective, err := backend.ObjectiveValue()
	if err != nil {
		result.Status = types.StatusCbcError
		return result, nil
	}
	rawValues, err := backend.VariableValues()
	if err != nil {
		result.Status = types.StatusCbcError
		return result, nil
	}
	result.Objective = objective + model.ObjectiveConstant
	result.Values = make([]int, len(rawValues))
	for i, value := range rawValues {
		result.Values[i] = int(math.Round(value))
	}
	return result, nil
}

package solver

import (
	"github.com/cloud-lever/roap/planner/formulation"
	"github.com/cloud-lever/roap/types"
)

/*Config gathers the parameters accepted by the optimization backends.
Zero values mean "not set" and leave the backend defaults untouched*/
type Config struct {
	FracGap    float64 `yaml:"frac-gap" json:"frac_gap"`
	MaxSeconds float64 `yaml:"max-seconds" json:"max_seconds"`
	Threads    int     `yaml:"threads" json:"threads"`
	Seed       int     `yaml:"seed" json:"seed"`
}

/*Backend is the contract every optimization engine has to satisfy: load a
model, solve it under the given configuration, and give back the variable
values and the objective. Implementations wrap lp_solve, CBC, etc.

A Backend instance holds the state of one single model: use the factory to
obtain a fresh one per solve and call Release when done with it*/
type Backend interface {
	Name() string
	LoadModel(model *formulation.Model) error
	Solve(config Config) (types.Status, error)
	VariableValues() ([]float64, error)
	ObjectiveValue() (float64, error)
	Release()
}

/*BackendFactory produces a fresh backend handle for one solve*/
type BackendFactory func() Backend

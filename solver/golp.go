package solver

import (
	"errors"

	"github.com/draffensperger/golp"

	"github.com/cloud-lever/roap/planner/formulation"
	"github.com/cloud-lever/roap/types"
)

/*GolpBackend solves the models through lp_solve, using the golp bindings.
This is the default backend*/
type GolpBackend struct {
	lp     *golp.LP
	solved bool
}

//NewGolpBackend is the BackendFactory for lp_solve
func NewGolpBackend() Backend {
	return &GolpBackend{}
}

func (b *GolpBackend) Name() string {
	return "lp_solve"
}

//LoadModel translates the abstract model into an lp_solve problem
func (b *GolpBackend) LoadModel(model *formulation.Model) error {
	if b.lp != nil {
		return errors.New("the backend already holds a model")
	}
	lp := golp.NewLP(0, model.NumVariables())
	lp.SetVerboseLevel(golp.NEUTRAL)
	for i, name := range model.VariableNames {
		lp.SetColName(i, name)
		lp.SetInt(i, true)
	}
	for _, constraint := range model.Constraints {
		entries := make([]golp.Entry, 0, len(constraint.Entries))
		for _, entry := range constraint.Entries {
			entries = append(entries, golp.Entry{Col: entry.Var, Val: entry.Coef})
		}
		err := lp.AddConstraintSparse(entries, golpSense(constraint.Sense), constraint.RHS)
		if err != nil {
			return err
		}
	}
	objective := make([]float64, model.NumVariables())
	for _, entry := range model.Objective {
		objective[entry.Var] += entry.Coef
	}
	lp.SetObjFn(objective)
	if model.Sense == formulation.Maximize {
		lp.SetMaximize()
	}
	b.lp = lp
	return nil
}

//Solve runs lp_solve and maps its termination code to the solution taxonomy.
//lp_solve does not expose the gap, time limit and thread parameters through
//these bindings, so they are ignored here
func (b *GolpBackend) Solve(config Config) (types.Status, error) {
	if b.lp == nil {
		return types.StatusUnsolved, errors.New("no model loaded")
	}
	if config.FracGap != 0 || config.MaxSeconds != 0 || config.Threads > 1 {
		log.Warning("The lp_solve backend ignores frac-gap, max-seconds and threads")
	}
	solution := b.lp.Solve()
	b.solved = true
	switch solution {
	case golp.OPTIMAL:
		return types.StatusOptimal, nil
	case golp.INFEASIBLE:
		return types.StatusInfeasible, nil
	case golp.NOFEASFOUND:
		return types.StatusIntegerInfeasible, nil
	case golp.SUBOPTIMAL, golp.FEASFOUND, golp.TIMEOUT, golp.USERABORT:
		return types.StatusAborted, nil
	case golp.NOMEMORY, golp.NUMFAILURE, golp.PROCFAIL, golp.PROCBREAK, golp.DEGENERATE:
		return types.StatusCbcError, nil
	case golp.UNBOUNDED:
		return types.StatusUnknown, nil
	}
	return types.StatusUnknown, nil
}

func (b *GolpBackend) VariableValues() ([]float64, error) {
	if !b.solved {
		return nil, errors.New("the model has not been solved")
	}
	return b.lp.Variables(), nil
}

func (b *GolpBackend) ObjectiveValue() (float64, error) {
	if !b.solved {
		return 0, errors.New("the model has not been solved")
	}
	return b.lp.Objective(), nil
}

//Release drops the lp_solve problem; the bindings free the underlying
//memory through a finalizer
func (b *GolpBackend) Release() {
	b.lp = nil
	b.solved = false
}

func golpSense(sense formulation.Sense) golp.ConstraintType {
	switch sense {
	case formulation.LessEqual:
		return golp.LE
	case formulation.Equal:
		return golp.EQ
	}
	return golp.GE
}

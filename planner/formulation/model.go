package formulation

/*
The formulators in this package do not talk to any concrete solver. They
produce an abstract integer programming model which the solver package
translates into whatever backend is configured.
*/

//Sense of a linear constraint
type Sense int

const (
	LessEqual Sense = iota
	Equal
	GreaterEqual
)

//Direction of the objective function
type ObjectiveSense int

const (
	Minimize ObjectiveSense = iota
	Maximize
)

/*Entry is one term of a sparse linear expression: Coef multiplying the
variable with index Var*/
type Entry struct {
	Var  int
	Coef float64
}

/*Constraint is a sparse linear constraint over the model variables*/
type Constraint struct {
	Name    string
	Entries []Entry
	Sense   Sense
	RHS     float64
}

/*Model is an integer programming problem: non-negative integer variables,
sparse linear constraints and a linear objective. ObjectiveConstant is a
fixed term added to the objective value when reporting costs; it does not
influence the optimization*/
type Model struct {
	Name              string
	Sense             ObjectiveSense
	VariableNames     []string
	Objective         []Entry
	ObjectiveConstant float64
	Constraints       []Constraint
}

//AddVariable registers a new non-negative integer variable and returns its index
func (m *Model) AddVariable(name string) int {
	m.VariableNames = append(m.VariableNames, name)
	return len(m.VariableNames) - 1
}

//AddConstraint appends a constraint to the model
func (m *Model) AddConstraint(name string, entries []Entry, sense Sense, rhs float64) {
	m.Constraints = append(m.Constraints, Constraint{
		Name:    name,
		Entries: entries,
		Sense:   sense,
		RHS:     rhs,
	})
}

//NumVariables returns how many variables the model holds
func (m *Model) NumVariables() int {
	return len(m.VariableNames)
}

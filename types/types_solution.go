package types

/*Status of a solve attempt, as reported by the solver boundary*/
type Status string

const (
	StatusUnsolved          Status = "unsolved"
	StatusOptimal           Status = "optimal"
	StatusInfeasible        Status = "infeasible"
	StatusIntegerInfeasible Status = "integer_infeasible"
	StatusOverfull          Status = "overfull"
	StatusTrivial           Status = "trivial"
	StatusAborted           Status = "aborted"
	StatusCbcError          Status = "cbc_error"
	StatusUnknown           Status = "unknown"
)

/*AlgorithmStats keeps the parameters given to the solving algorithm and
the termination status it reported*/
type AlgorithmStats struct {
	Name          string  `json:"name" bson:"name" yaml:"name"`
	Status        Status  `json:"status" bson:"status" yaml:"status"`
	Gcd           bool    `json:"gcd" bson:"gcd" yaml:"gcd"`
	GcdMultiplier int     `json:"gcd_multiplier" bson:"gcd_multiplier" yaml:"gcd_multiplier"`
	FracGap       float64 `json:"frac_gap,omitempty" bson:"frac_gap,omitempty" yaml:"frac_gap,omitempty"`
	MaxSeconds    float64 `json:"max_seconds,omitempty" bson:"max_seconds,omitempty" yaml:"max_seconds,omitempty"`
	LowerBound    float64 `json:"lower_bound,omitempty" bson:"lower_bound,omitempty" yaml:"lower_bound,omitempty"`
}

/*SolvingStats gathers the timing and cost of the solution of Phase I, or of
one single timeslot of Phase II. OptimalCost is only meaningful when the
status is optimal or overfull*/
type SolvingStats struct {
	CreationTime float64        `json:"creation_time" bson:"creation_time" yaml:"creation_time"`
	SolvingTime  float64        `json:"solving_time" bson:"solving_time" yaml:"solving_time"`
	OptimalCost  float64        `json:"optimal_cost" bson:"optimal_cost" yaml:"optimal_cost"`
	Algorithm    AlgorithmStats `json:"algorithm" bson:"algorithm" yaml:"algorithm"`
}

/*GlobalSolvingStats is the aggregation of the per timeslot stats of Phase II*/
type GlobalSolvingStats struct {
	CreationTime float64 `json:"creation_time" bson:"creation_time" yaml:"creation_time"`
	SolvingTime  float64 `json:"solving_time" bson:"solving_time" yaml:"solving_time"`
	OptimalCost  float64 `json:"optimal_cost" bson:"optimal_cost" yaml:"optimal_cost"`
	Status       Status  `json:"status" bson:"status" yaml:"status"`
}

/*ReservedAllocation is the number of reserved VMs of each reserved instance
class to keep running during the whole reservation period*/
type ReservedAllocation struct {
	InstanceClasses []*InstanceClass `json:"instance_classes" bson:"instance_classes"`
	VMsNumber       []int            `json:"vms_number" bson:"vms_number"`
}

/*AllocationInfo is the allocation tensor: Values[t][k][a] is the number of
VMs of instance class InstanceClasses[k] serving app Apps[a] during the
timeslot (or load level) t. For Phase I solutions each row t corresponds to
one unique load level and Repeats[t] tells how many timeslots share it; for
Phase II solutions there is one row per timeslot and every repeat is 1*/
type AllocationInfo struct {
	Apps            []*App           `json:"apps" bson:"apps"`
	InstanceClasses []*InstanceClass `json:"instance_classes" bson:"instance_classes"`
	WorkloadTuples  [][]int          `json:"workload_tuples" bson:"workload_tuples"`
	Repeats         []int            `json:"repeats" bson:"repeats"`
	Values          [][][]int        `json:"values" bson:"values"`
	Units           string           `json:"units" bson:"units"`
}

/*SolutionI is the solution of Phase I: the reserved allocation to purchase
for the whole period plus the optimal allocation found for each load level*/
type SolutionI struct {
	ID                 string              `json:"id" bson:"_id"`
	Problem            *Problem            `json:"problem" bson:"problem"`
	SolvingStats       SolvingStats        `json:"solving_stats" bson:"solving_stats"`
	ReservedAllocation *ReservedAllocation `json:"reserved_allocation" bson:"reserved_allocation"`
	Allocation         *AllocationInfo     `json:"allocation" bson:"allocation"`
}

/*SolutionII is the solution of Phase II for the whole reservation period*/
type SolutionII struct {
	ID                 string             `json:"id" bson:"_id"`
	Problem            *Problem           `json:"problem" bson:"problem"`
	PreviousPhase      *SolutionI         `json:"previous_phase" bson:"previous_phase"`
	SolvingStats       []SolvingStats     `json:"solving_stats" bson:"solving_stats"`
	GlobalSolvingStats GlobalSolvingStats `json:"global_solving_stats" bson:"global_solving_stats"`
	Allocation         *AllocationInfo    `json:"allocation" bson:"allocation"`
}

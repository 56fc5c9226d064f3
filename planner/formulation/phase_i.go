package formulation

import (
	"fmt"

	"github.com/cloud-lever/roap/types"
)

/*PhaseIVars keeps the mapping between the entities of the problem and the
variable indexes of the built model, needed to read the solution back.
X[l][k][a] is the variable index for load level l, instance class k (in
InstanceClasses order) and app a (in Apps order); Y[id][a] is the variable
index holding the number of reserved VMs of the class with that id kept
running for app a during the whole period. Reserved VMs do not change with
the load level, so for a reserved class k the entries X[l][k][a] alias the
same Y[id][a] variable at every level*/
type PhaseIVars struct {
	Apps            []*types.App
	InstanceClasses []*types.InstanceClass
	Reserved        []*types.InstanceClass
	Y               map[string][]int
	X               [][][]int
}

/*PriceTable holds the prices and performances of a problem converted to
the timeslot length of its workloads, after the optional rescaling*/
type PriceTable struct {
	PricePerSlot map[string]float64
	PerfPerSlot  map[string]map[string]float64
}

/* Convert prices and performances to per-timeslot magnitudes
	in:
		@system	apps, instance classes and performances
		@slotUnit	time unit of the workload timeslots
		@gcdMultiplier	divisor already applied to the workloads, 1 for none
	out:
		@PriceTable with prices per timeslot and performances per timeslot
*/
func BuildPriceTable(system *types.System, slotUnit string, gcdMultiplier int) (*PriceTable, error) {
	table := &PriceTable{
		PricePerSlot: make(map[string]float64),
		PerfPerSlot:  make(map[string]map[string]float64),
	}
	perfFactor, err := types.TimeUnitsIn(system.Performances.TimeUnit, slotUnit)
	if err != nil {
		return nil, err
	}
	for _, iclass := range system.InstanceClasses {
		priceFactor, err := types.TimeUnitsIn(iclass.TimeUnit, slotUnit)
		if err != nil {
			return nil, err
		}
		table.PricePerSlot[iclass.ID] = iclass.Price / priceFactor
		perApp := make(map[string]float64, len(system.Apps))
		for _, app := range system.Apps {
			value, ok := system.Performances.Values.Get(iclass, app)
			if !ok {
				return nil, fmt.Errorf("performance data for app %s in instance class %s is missing",
					app.ID, iclass.ID)
			}
			perApp[app.ID] = value / perfFactor / float64(gcdMultiplier)
		}
		table.PerfPerSlot[iclass.ID] = perApp
	}
	return table, nil
}

/* Build the optimization model which decides the reserved VMs for the whole
reservation period and the best allocation for each unique load level
	in:
		@system	apps, instance classes and performances
		@slotUnit	time unit of the workload timeslots
		@hist	histogram of the workload, with the original values
		@gcdMultiplier	divisor to apply to workload and performance values
	out:
		@Model	the integer program to hand to the solver
		@PhaseIVars	variable indexes to decode the solution
*/
func BuildPhaseIModel(system *types.System, slotUnit string, hist *LoadHistogram,
	gcdMultiplier int) (*Model, *PhaseIVars, error) {

	table, err := BuildPriceTable(system, slotUnit, gcdMultiplier)
	if err != nil {
		return nil, nil, err
	}

	model := &Model{Name: system.Name, Sense: Minimize}
	vars := &PhaseIVars{
		Apps:            system.Apps,
		InstanceClasses: system.InstanceClasses,
		Y:               make(map[string][]int),
	}
	for _, iclass := range system.InstanceClasses {
		if iclass.IsReserved {
			vars.Reserved = append(vars.Reserved, iclass)
			perApp := make([]int, len(system.Apps))
			for a, app := range system.Apps {
				perApp[a] = model.AddVariable(
					fmt.Sprintf("Y_(%s,%s)", app.ID, iclass.ID))
			}
			vars.Y[iclass.ID] = perApp
		}
	}
	vars.X = make([][][]int, len(hist.Levels))
	for l, level := range hist.Levels {
		vars.X[l] = make([][]int, len(system.InstanceClasses))
		for k, iclass := range system.InstanceClasses {
			vars.X[l][k] = make([]int, len(system.Apps))
			if iclass.IsReserved {
				copy(vars.X[l][k], vars.Y[iclass.ID])
				continue
			}
			for a, app := range system.Apps {
				vars.X[l][k][a] = model.AddVariable(
					fmt.Sprintf("X_(%s,%s,%v)", app.ID, iclass.ID, level))
			}
		}
	}

	timeslots := hist.Timeslots()
	objective := make([]Entry, 0)
	for _, iclass := range vars.Reserved {
		for _, yVar := range vars.Y[iclass.ID] {
			objective = append(objective, Entry{
				Var:  yVar,
				Coef: table.PricePerSlot[iclass.ID] * float64(timeslots),
			})
		}
	}
	for l := range hist.Levels {
		for k, iclass := range system.InstanceClasses {
			if iclass.IsReserved {
				continue
			}
			for a := range system.Apps {
				objective = append(objective, Entry{
					Var:  vars.X[l][k][a],
					Coef: table.PricePerSlot[iclass.ID] * float64(hist.Repeats[l]),
				})
			}
		}
	}
	model.Objective = objective

	addPerformanceConstraints(model, vars, table, hist.Levels, gcdMultiplier)
	addInstanceClassCaps(model, vars, hist.Levels)
	addLimitingSetCaps(model, vars, hist.Levels)

	return model, vars, nil
}

//Minimum performance per load level and app. The performances in the table
//and the workload levels are both divided by the same multiplier, which
//leaves the feasible region untouched
func addPerformanceConstraints(model *Model, vars *PhaseIVars, table *PriceTable,
	levels [][]int, gcdMultiplier int) {

	for l, level := range levels {
		for a, app := range vars.Apps {
			entries := make([]Entry, 0, len(vars.InstanceClasses))
			for k, iclass := range vars.InstanceClasses {
				perf := table.PerfPerSlot[iclass.ID][app.ID]
				if perf == 0 {
					continue
				}
				entries = append(entries, Entry{Var: vars.X[l][k][a], Coef: perf})
			}
			model.AddConstraint(
				fmt.Sprintf("Minimum performance for app %s when workload is %v", app.ID, level),
				entries, GreaterEqual, float64(level[a]/gcdMultiplier))
		}
	}
}

//Per instance class limit on the number of VMs; a zero limit means unbounded
func addInstanceClassCaps(model *Model, vars *PhaseIVars, levels [][]int) {
	for k, iclass := range vars.InstanceClasses {
		if iclass.MaxVMs == 0 {
			continue
		}
		if iclass.IsReserved {
			entries := make([]Entry, 0, len(vars.Apps))
			for _, yVar := range vars.Y[iclass.ID] {
				entries = append(entries, Entry{Var: yVar, Coef: 1})
			}
			model.AddConstraint(
				fmt.Sprintf("Max VMs for reserved instance class %s", iclass.ID),
				entries, LessEqual, float64(iclass.MaxVMs))
			continue
		}
		for l, level := range levels {
			entries := make([]Entry, 0, len(vars.Apps))
			for a := range vars.Apps {
				entries = append(entries, Entry{Var: vars.X[l][k][a], Coef: 1})
			}
			model.AddConstraint(
				fmt.Sprintf("Max VMs for instance class %s when workload is %v", iclass.ID, level),
				entries, LessEqual, float64(iclass.MaxVMs))
		}
	}
}

//Aggregate VM and core caps shared by the classes of each limiting set.
//Reserved classes count through Y at every level, on-demand through X
func addLimitingSetCaps(model *Model, vars *PhaseIVars, levels [][]int) {
	for _, lset := range collectLimitingSets(vars.InstanceClasses) {
		if lset.MaxVMs > 0 {
			for l, level := range levels {
				entries := limitingSetEntries(vars, lset, l, func(*types.InstanceClass) float64 { return 1 })
				model.AddConstraint(
					fmt.Sprintf("Max VMs for limiting set %s when workload is %v", lset.ID, level),
					entries, LessEqual, float64(lset.MaxVMs))
			}
		}
		if lset.MaxCores > 0 {
			for l, level := range levels {
				entries := limitingSetEntries(vars, lset, l, func(ic *types.InstanceClass) float64 { return ic.Cores })
				model.AddConstraint(
					fmt.Sprintf("Max cores for limiting set %s when workload is %v", lset.ID, level),
					entries, LessEqual, lset.MaxCores)
			}
		}
	}
}

func limitingSetEntries(vars *PhaseIVars, lset *types.LimitingSet, level int,
	weight func(*types.InstanceClass) float64) []Entry {

	entries := make([]Entry, 0)
	for k, iclass := range vars.InstanceClasses {
		if !inLimitingSet(iclass, lset) {
			continue
		}
		if iclass.IsReserved {
			for _, yVar := range vars.Y[iclass.ID] {
				entries = append(entries, Entry{Var: yVar, Coef: weight(iclass)})
			}
			continue
		}
		for a := range vars.Apps {
			entries = append(entries, Entry{Var: vars.X[level][k][a], Coef: weight(iclass)})
		}
	}
	return entries
}

//Forward index of the limiting sets referenced by the instance classes,
//deduplicated by id and in first-seen order
func collectLimitingSets(iclasses []*types.InstanceClass) []*types.LimitingSet {
	seen := make(map[string]bool)
	sets := make([]*types.LimitingSet, 0)
	for _, iclass := range iclasses {
		for _, lset := range iclass.LimitingSets {
			if seen[lset.ID] {
				continue
			}
			seen[lset.ID] = true
			sets = append(sets, lset)
		}
	}
	return sets
}

func inLimitingSet(iclass *types.InstanceClass, lset *types.LimitingSet) bool {
	for _, candidate := range iclass.LimitingSets {
		if candidate.ID == lset.ID {
			return true
		}
	}
	return false
}

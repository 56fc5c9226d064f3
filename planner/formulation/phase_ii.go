package formulation

import (
	"fmt"

	"github.com/cloud-lever/roap/types"
)

/*PhaseIIVars maps the entities of a single-timeslot model to variable
indexes: X[k][a] for instance class k and app a*/
type PhaseIIVars struct {
	Apps            []*types.App
	InstanceClasses []*types.InstanceClass
	X               [][]int
}

/*TimeslotSpec describes the optimization of one single timeslot: the
system, the workload tuple predicted for the slot, the reserved VMs
already purchased (fixed, not decided here) and optional per class and app
lower bounds for the allocation. When MaximizePerformance is set the model
built is the fallback one: it maximizes the served fraction of the
workload under the same capacity limits, with no minimum performance and
ignoring the guided bounds*/
type TimeslotSpec struct {
	System              *types.System
	SlotUnit            string
	LoadLevel           []int
	Reserved            *types.ReservedAllocation
	Guided              map[string]map[string]int
	MaximizePerformance bool
}

//FixedReserved returns the reserved VMs per instance class id
func (s *TimeslotSpec) FixedReserved() map[string]int {
	fixed := make(map[string]int)
	if s.Reserved == nil {
		return fixed
	}
	for i, iclass := range s.Reserved.InstanceClasses {
		fixed[iclass.ID] = s.Reserved.VMsNumber[i]
	}
	return fixed
}

/* Build the optimization model for one timeslot
	in:
		@spec	description of the timeslot problem
	out:
		@Model	the integer program to hand to the solver
		@PhaseIIVars	variable indexes to decode the solution
*/
func BuildTimeslotModel(spec *TimeslotSpec) (*Model, *PhaseIIVars, error) {
	system := spec.System
	if len(spec.LoadLevel) != len(system.Apps) {
		return nil, nil, fmt.Errorf("the workload tuple has %d values for %d apps",
			len(spec.LoadLevel), len(system.Apps))
	}
	table, err := BuildPriceTable(system, spec.SlotUnit, 1)
	if err != nil {
		return nil, nil, err
	}
	fixed := spec.FixedReserved()

	model := &Model{Name: system.Name, Sense: Minimize}
	vars := &PhaseIIVars{Apps: system.Apps, InstanceClasses: system.InstanceClasses}
	vars.X = make([][]int, len(system.InstanceClasses))
	for k, iclass := range system.InstanceClasses {
		vars.X[k] = make([]int, len(system.Apps))
		for a, app := range system.Apps {
			vars.X[k][a] = model.AddVariable(
				fmt.Sprintf("X_(%s,%s,%v)", app.ID, iclass.ID, spec.LoadLevel))
		}
	}

	if spec.MaximizePerformance {
		buildServedFractionObjective(model, vars, table, spec.LoadLevel)
	} else {
		buildTimeslotCostObjective(model, vars, table, fixed)
	}

	addTimeslotPerformanceConstraints(model, vars, table, spec)
	addTimeslotReservedCoupling(model, vars, fixed, spec.LoadLevel)
	addTimeslotInstanceClassCaps(model, vars, spec.LoadLevel)
	addTimeslotLimitingSetCaps(model, vars, fixed, spec.LoadLevel)
	if !spec.MaximizePerformance {
		addGuidedLowerBounds(model, vars, spec.Guided)
	}

	return model, vars, nil
}

//Cost of the on-demand VMs of the slot; reserved VMs are paid for whether
//used or not, so their cost enters as a constant term
func buildTimeslotCostObjective(model *Model, vars *PhaseIIVars, table *PriceTable,
	fixed map[string]int) {

	objective := make([]Entry, 0)
	for k, iclass := range vars.InstanceClasses {
		if iclass.IsReserved {
			model.ObjectiveConstant += table.PricePerSlot[iclass.ID] * float64(fixed[iclass.ID])
			continue
		}
		for a := range vars.Apps {
			objective = append(objective, Entry{
				Var:  vars.X[k][a],
				Coef: table.PricePerSlot[iclass.ID],
			})
		}
	}
	model.Objective = objective
}

//Served fraction of the workload, summed over the apps with some load
func buildServedFractionObjective(model *Model, vars *PhaseIIVars, table *PriceTable,
	level []int) {

	model.Sense = Maximize
	objective := make([]Entry, 0)
	for k, iclass := range vars.InstanceClasses {
		for a, app := range vars.Apps {
			if level[a] == 0 {
				continue
			}
			perf := table.PerfPerSlot[iclass.ID][app.ID]
			if perf == 0 {
				continue
			}
			objective = append(objective, Entry{
				Var:  vars.X[k][a],
				Coef: perf / float64(level[a]),
			})
		}
	}
	model.Objective = objective
}

//In the nominal model the performance must reach the workload of each app;
//in the fallback one it must not exceed it, so that the solver does not
//burn VMs serving requests which do not exist
func addTimeslotPerformanceConstraints(model *Model, vars *PhaseIIVars, table *PriceTable,
	spec *TimeslotSpec) {

	sense := GreaterEqual
	if spec.MaximizePerformance {
		sense = LessEqual
	}
	for a, app := range vars.Apps {
		entries := make([]Entry, 0, len(vars.InstanceClasses))
		for k, iclass := range vars.InstanceClasses {
			perf := table.PerfPerSlot[iclass.ID][app.ID]
			if perf == 0 {
				continue
			}
			entries = append(entries, Entry{Var: vars.X[k][a], Coef: perf})
		}
		if len(entries) == 0 {
			continue
		}
		model.AddConstraint(
			fmt.Sprintf("Performance for app %s when workload is %v", app.ID, spec.LoadLevel),
			entries, sense, float64(spec.LoadLevel[a]))
	}
}

//Reserved VMs used in the slot cannot exceed the purchased ones
func addTimeslotReservedCoupling(model *Model, vars *PhaseIIVars, fixed map[string]int,
	level []int) {

	for k, iclass := range vars.InstanceClasses {
		if !iclass.IsReserved {
			continue
		}
		entries := make([]Entry, 0, len(vars.Apps))
		for a := range vars.Apps {
			entries = append(entries, Entry{Var: vars.X[k][a], Coef: 1})
		}
		model.AddConstraint(
			fmt.Sprintf("Reserved VMs of class %s when workload is %v", iclass.ID, level),
			entries, LessEqual, float64(fixed[iclass.ID]))
	}
}

//Per instance class limit for the on-demand VMs of the slot
func addTimeslotInstanceClassCaps(model *Model, vars *PhaseIIVars, level []int) {
	for k, iclass := range vars.InstanceClasses {
		if iclass.IsReserved || iclass.MaxVMs == 0 {
			continue
		}
		entries := make([]Entry, 0, len(vars.Apps))
		for a := range vars.Apps {
			entries = append(entries, Entry{Var: vars.X[k][a], Coef: 1})
		}
		model.AddConstraint(
			fmt.Sprintf("Max VMs for instance class %s when workload is %v", iclass.ID, level),
			entries, LessEqual, float64(iclass.MaxVMs))
	}
}

//Aggregate caps of the limiting sets. The reserved VMs are a constant
//contribution here, so they are moved to the right hand side
func addTimeslotLimitingSetCaps(model *Model, vars *PhaseIIVars, fixed map[string]int,
	level []int) {

	for _, lset := range collectLimitingSets(vars.InstanceClasses) {
		if lset.MaxVMs > 0 {
			addTimeslotLimitingSetCap(model, vars, fixed, lset, level,
				func(*types.InstanceClass) float64 { return 1 },
				float64(lset.MaxVMs), "VMs")
		}
		if lset.MaxCores > 0 {
			addTimeslotLimitingSetCap(model, vars, fixed, lset, level,
				func(ic *types.InstanceClass) float64 { return ic.Cores },
				lset.MaxCores, "cores")
		}
	}
}

func addTimeslotLimitingSetCap(model *Model, vars *PhaseIIVars, fixed map[string]int,
	lset *types.LimitingSet, level []int, weight func(*types.InstanceClass) float64,
	limit float64, what string) {

	rhs := limit
	entries := make([]Entry, 0)
	for k, iclass := range vars.InstanceClasses {
		if !inLimitingSet(iclass, lset) {
			continue
		}
		if iclass.IsReserved {
			rhs -= weight(iclass) * float64(fixed[iclass.ID])
			continue
		}
		for a := range vars.Apps {
			entries = append(entries, Entry{Var: vars.X[k][a], Coef: weight(iclass)})
		}
	}
	if len(entries) == 0 {
		if rhs < 0 {
			// The reserved VMs alone overflow the cap: the model is
			// infeasible no matter what the solver decides
			model.AddConstraint(
				fmt.Sprintf("Max %s for limiting set %s when workload is %v", what, lset.ID, level),
				[]Entry{{Var: 0, Coef: 0}}, LessEqual, rhs)
		}
		return
	}
	model.AddConstraint(
		fmt.Sprintf("Max %s for limiting set %s when workload is %v", what, lset.ID, level),
		entries, LessEqual, rhs)
}

//Lower bounds for allocations kept running from previous timeslots
func addGuidedLowerBounds(model *Model, vars *PhaseIIVars, guided map[string]map[string]int) {
	if len(guided) == 0 {
		return
	}
	for k, iclass := range vars.InstanceClasses {
		perApp, ok := guided[iclass.ID]
		if !ok {
			continue
		}
		for a, app := range vars.Apps {
			minimum, ok := perApp[app.ID]
			if !ok || minimum <= 0 {
				continue
			}
			model.AddConstraint(
				fmt.Sprintf("At least %d VMs of class %s for app %s", minimum, iclass.ID, app.ID),
				[]Entry{{Var: vars.X[k][a], Coef: 1}}, GreaterEqual, float64(minimum))
		}
	}
}

/* Compute the cost of a solved timeslot from its allocation
	in:
		@vars	variable layout of the timeslot model
		@table	prices per timeslot
		@fixed	reserved VMs per instance class id
		@values	allocation read back from the solver, values[k][a]
	out:
		@float64	reserved cost plus on-demand cost of the slot
*/
func TimeslotCost(vars *PhaseIIVars, table *PriceTable, fixed map[string]int,
	values [][]int) float64 {

	cost := 0.0
	for k, iclass := range vars.InstanceClasses {
		if iclass.IsReserved {
			cost += table.PricePerSlot[iclass.ID] * float64(fixed[iclass.ID])
			continue
		}
		for a := range vars.Apps {
			cost += table.PricePerSlot[iclass.ID] * float64(values[k][a])
		}
	}
	return cost
}

package types

import (
	"errors"
	"fmt"
)

/*App identifies one of the applications hosted in the infrastructure*/
type App struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

/*LimitingSet groups instance classes which share an aggregate cap
on the number of VMs and/or cores, e.g. a region or an availability zone.
A cap with value 0 means that the limit is not enforced*/
type LimitingSet struct {
	ID       string  `json:"id" bson:"id"`
	Name     string  `json:"name" bson:"name"`
	MaxVMs   int     `json:"max_vms" bson:"max_vms"`
	MaxCores float64 `json:"max_cores" bson:"max_cores"`
}

/*InstanceClass describes one VM type as offered in one limiting set,
with its pricing and capacity limits*/
type InstanceClass struct {
	ID           string         `json:"id" bson:"id"`
	Name         string         `json:"name" bson:"name"`
	LimitingSets []*LimitingSet `json:"limiting_sets" bson:"limiting_sets"`
	MaxVMs       int            `json:"max_vms" bson:"max_vms"`
	Price        float64        `json:"price" bson:"price"`
	TimeUnit     string         `json:"time_unit" bson:"time_unit"`
	IsReserved   bool           `json:"is_reserved" bson:"is_reserved"`
	IsPrivate    bool           `json:"is_private" bson:"is_private"`
	Cores        float64        `json:"cores" bson:"cores"`
}

/*PerformanceValues stores the performance of each pair (instance class, app),
indexed by their ids*/
type PerformanceValues map[string]map[string]float64

//Get returns the performance of one pair (instance class, app)
func (p PerformanceValues) Get(ic *InstanceClass, app *App) (float64, bool) {
	perApp, ok := p[ic.ID]
	if !ok {
		return 0, false
	}
	value, ok := perApp[app.ID]
	return value, ok
}

/*PerformanceSet gathers the performance values of all instance classes,
expressed as requests served per time unit*/
type PerformanceSet struct {
	ID       string            `json:"id" bson:"id"`
	TimeUnit string            `json:"time_unit" bson:"time_unit"`
	Values   PerformanceValues `json:"values" bson:"values"`
}

/*Workload is the predicted number of requests per timeslot for one app.
For long term predictions Values holds one value per timeslot of the whole
reservation period; for short term predictions it holds a single value*/
type Workload struct {
	ID                    string `json:"id" bson:"id"`
	Description           string `json:"description" bson:"description"`
	App                   *App   `json:"app" bson:"app"`
	TimeUnit              string `json:"time_unit" bson:"time_unit"`
	Values                []int  `json:"values" bson:"values"`
	IntraSlotDistribution string `json:"intra_slot_distribution" bson:"intra_slot_distribution"`
	Filename              string `json:"filename,omitempty" bson:"filename,omitempty"`
}

/*Problem gathers the workload prediction per app, the description of the
available cloud infrastructure and the performance of each instance class*/
type Problem struct {
	ID              string           `json:"id" bson:"id"`
	Name            string           `json:"name" bson:"name"`
	Description     string           `json:"description" bson:"description"`
	Workloads       []*Workload      `json:"workloads" bson:"workloads"`
	InstanceClasses []*InstanceClass `json:"instance_classes" bson:"instance_classes"`
	Performances    *PerformanceSet  `json:"performances" bson:"performances"`
}

/*System is the part of a problem which does not depend on the workload*/
type System struct {
	ID              string
	Name            string
	Apps            []*App
	InstanceClasses []*InstanceClass
	Performances    *PerformanceSet
}

//Apps returns the apps of the problem, in workload order
func (p *Problem) Apps() []*App {
	apps := make([]*App, 0, len(p.Workloads))
	for _, workload := range p.Workloads {
		apps = append(apps, workload.App)
	}
	return apps
}

//Timeslots returns the number of timeslots covered by the workloads
func (p *Problem) Timeslots() int {
	if len(p.Workloads) == 0 {
		return 0
	}
	return len(p.Workloads[0].Values)
}

/* Perform sanity checks on the problem definition
	in:
		@problem to check
	out:
		@error describing the first structural defect found, nil if none
*/
func CheckValidProblem(problem *Problem) error {
	if len(problem.Workloads) == 0 {
		return errors.New("the problem has no workloads")
	}
	if len(problem.InstanceClasses) == 0 {
		return errors.New("the problem has no instance classes")
	}
	if problem.Performances == nil {
		return errors.New("the problem has no performance set")
	}
	length := len(problem.Workloads[0].Values)
	timeUnit := problem.Workloads[0].TimeUnit
	seenApps := make(map[string]bool)
	for _, workload := range problem.Workloads {
		if workload.App == nil {
			return fmt.Errorf("workload %s has no app", workload.ID)
		}
		if seenApps[workload.App.ID] {
			return fmt.Errorf("more than one workload for app %s", workload.App.ID)
		}
		seenApps[workload.App.ID] = true
		if len(workload.Values) != length {
			return errors.New("all workloads in the problem should have the same length")
		}
		if workload.TimeUnit != timeUnit {
			return errors.New("all workloads in the problem should use the same time unit")
		}
		if !ValidTimeUnit(workload.TimeUnit) {
			return fmt.Errorf("workload %s uses unknown time unit %q", workload.ID, workload.TimeUnit)
		}
		for _, value := range workload.Values {
			if value < 0 {
				return fmt.Errorf("workload %s contains a negative value", workload.ID)
			}
		}
	}
	if !ValidTimeUnit(problem.Performances.TimeUnit) {
		return fmt.Errorf("performance set %s uses unknown time unit %q",
			problem.Performances.ID, problem.Performances.TimeUnit)
	}
	for _, iclass := range problem.InstanceClasses {
		if !ValidTimeUnit(iclass.TimeUnit) {
			return fmt.Errorf("instance class %s uses unknown time unit %q", iclass.ID, iclass.TimeUnit)
		}
		if iclass.Cores < 1 {
			return fmt.Errorf("instance class %s has less than one core", iclass.ID)
		}
		for _, workload := range problem.Workloads {
			value, ok := problem.Performances.Values.Get(iclass, workload.App)
			if !ok {
				return fmt.Errorf("performance data for app %s in instance class %s is missing",
					workload.App.ID, iclass.ID)
			}
			if value < 0 {
				return fmt.Errorf("performance of app %s in instance class %s is negative",
					workload.App.ID, iclass.ID)
			}
		}
	}
	return nil
}

/* Extract the system part of a problem
	in:
		@problem
	out:
		@System with the workload independent information
*/
func SystemFromProblem(problem *Problem) *System {
	return &System{
		ID:              problem.ID,
		Name:            problem.Name,
		Apps:            problem.Apps(),
		InstanceClasses: problem.InstanceClasses,
		Performances:    problem.Performances,
	}
}

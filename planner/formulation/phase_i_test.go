package formulation

import (
	"strings"
	"testing"

	"github.com/cloud-lever/roap/types"
)

//System with one on-demand and one reserved class, both serving two apps
//with the same performance, plus a capped limiting set for the reserved one
func minimalSystem() (*types.System, []*types.Workload) {
	app0 := &types.App{ID: "a0"}
	app1 := &types.App{ID: "a1"}
	cloud1 := &types.LimitingSet{ID: "Cloud1"}
	cloudR := &types.LimitingSet{ID: "CloudR", MaxVMs: 20}
	onDemand := &types.InstanceClass{
		ID: "m3large", LimitingSets: []*types.LimitingSet{cloud1},
		Price: 10, TimeUnit: "h", Cores: 1,
	}
	reserved := &types.InstanceClass{
		ID: "m3large_r", LimitingSets: []*types.LimitingSet{cloudR},
		MaxVMs: 20, Price: 7, TimeUnit: "h", IsReserved: true, Cores: 1,
	}
	workloads := []*types.Workload{
		{ID: "wl0", App: app0, TimeUnit: "h", Values: []int{30, 32, 30, 30}},
		{ID: "wl1", App: app1, TimeUnit: "h", Values: []int{1003, 1200, 1194, 1003}},
	}
	system := &types.System{
		ID: "problem1", Name: "minimal",
		Apps:            []*types.App{app0, app1},
		InstanceClasses: []*types.InstanceClass{onDemand, reserved},
		Performances: &types.PerformanceSet{
			ID: "perf1", TimeUnit: "h",
			Values: types.PerformanceValues{
				"m3large":   {"a0": 10, "a1": 500},
				"m3large_r": {"a0": 10, "a1": 500},
			},
		},
	}
	return system, workloads
}

func countConstraints(model *Model, prefix string) int {
	count := 0
	for _, constraint := range model.Constraints {
		if strings.HasPrefix(constraint.Name, prefix) {
			count++
		}
	}
	return count
}

func TestPhaseIModelShape(t *testing.T) {
	system, workloads := minimalSystem()
	hist, err := BuildLoadHistogram(workloads)
	if err != nil {
		t.Fatal("For", "the histogram", "expected", nil, "got", err)
	}
	model, vars, err := BuildPhaseIModel(system, "h", hist, 1)
	if err != nil {
		t.Fatal("For", "the model", "expected", nil, "got", err)
	}

	// One Y per app for the reserved class plus X for 3 levels x 1
	// on-demand class x 2 apps; the reserved X entries alias the Y ones
	if model.NumVariables() != 8 {
		t.Error(
			"For", "the number of variables",
			"expected", 8,
			"got", model.NumVariables(),
		)
	}
	if len(vars.Reserved) != 1 || vars.Reserved[0].ID != "m3large_r" {
		t.Error(
			"For", "the reserved classes",
			"expected", "m3large_r",
			"got", vars.Reserved,
		)
	}
	for l := range vars.X {
		if vars.X[l][1][0] != vars.Y["m3large_r"][0] ||
			vars.X[l][1][1] != vars.Y["m3large_r"][1] {
			t.Error(
				"For", "the reserved variables at level", l,
				"expected", vars.Y["m3large_r"],
				"got", vars.X[l][1],
			)
		}
	}
	if got := countConstraints(model, "Minimum performance"); got != 6 {
		t.Error(
			"For", "the performance constraints",
			"expected", 6,
			"got", got,
		)
	}
	if got := countConstraints(model, "Max VMs for reserved instance class"); got != 1 {
		t.Error(
			"For", "the reserved class cap",
			"expected", 1,
			"got", got,
		)
	}
	// Cloud1 has no bounds; CloudR caps the VMs at every level
	if got := countConstraints(model, "Max VMs for limiting set CloudR"); got != 3 {
		t.Error(
			"For", "the limiting set caps",
			"expected", 3,
			"got", got,
		)
	}
	if got := countConstraints(model, "Max VMs for limiting set Cloud1"); got != 0 {
		t.Error(
			"For", "the unbounded limiting set",
			"expected", 0,
			"got", got,
		)
	}
	if got := countConstraints(model, "Max cores"); got != 0 {
		t.Error(
			"For", "the core caps of unbounded sets",
			"expected", 0,
			"got", got,
		)
	}
}

func TestPhaseIObjectiveCoefficients(t *testing.T) {
	system, workloads := minimalSystem()
	hist, _ := BuildLoadHistogram(workloads)
	model, vars, err := BuildPhaseIModel(system, "h", hist, 1)
	if err != nil {
		t.Fatal("For", "the model", "expected", nil, "got", err)
	}

	coefs := make(map[int]float64)
	for _, entry := range model.Objective {
		coefs[entry.Var] += entry.Coef
	}
	// Reserved VMs are paid for the whole period: 7 per slot x 4 slots,
	// once per app variable
	for a := range vars.Apps {
		if got := coefs[vars.Y["m3large_r"][a]]; got != 28 {
			t.Error(
				"For", "the reserved objective coefficient of app", a,
				"expected", 28,
				"got", got,
			)
		}
	}
	// On-demand VMs at the first level are paid for its 2 repetitions
	if got := coefs[vars.X[0][0][0]]; got != 20 {
		t.Error(
			"For", "the on-demand objective coefficient at level 0",
			"expected", 20,
			"got", got,
		)
	}
}

func TestPhaseIRescaledCoefficients(t *testing.T) {
	app := &types.App{ID: "a0"}
	iclass := &types.InstanceClass{ID: "ic0", Price: 5, TimeUnit: "h", Cores: 1}
	system := &types.System{
		ID: "rescaled", Apps: []*types.App{app},
		InstanceClasses: []*types.InstanceClass{iclass},
		Performances: &types.PerformanceSet{
			ID: "perf", TimeUnit: "h",
			Values: types.PerformanceValues{"ic0": {"a0": 50}},
		},
	}
	workloads := []*types.Workload{
		{ID: "wl0", App: app, TimeUnit: "h", Values: []int{100, 200}},
	}
	hist, _ := BuildLoadHistogram(workloads)
	model, _, err := BuildPhaseIModel(system, "h", hist, 50)
	if err != nil {
		t.Fatal("For", "the model", "expected", nil, "got", err)
	}
	for _, constraint := range model.Constraints {
		if !strings.HasPrefix(constraint.Name, "Minimum performance") {
			continue
		}
		if constraint.Entries[0].Coef != 1 {
			t.Error(
				"For", "the rescaled performance coefficient",
				"expected", 1,
				"got", constraint.Entries[0].Coef,
			)
		}
		if constraint.RHS != 2 && constraint.RHS != 4 {
			t.Error(
				"For", "the rescaled workload",
				"expected", "2 or 4",
				"got", constraint.RHS,
			)
		}
	}
}

func TestPriceTableTimeUnitConversion(t *testing.T) {
	app := &types.App{ID: "a0"}
	iclass := &types.InstanceClass{ID: "ic0", Price: 7, TimeUnit: "h", Cores: 1}
	system := &types.System{
		ID: "units", Apps: []*types.App{app},
		InstanceClasses: []*types.InstanceClass{iclass},
		Performances: &types.PerformanceSet{
			ID: "perf", TimeUnit: "h",
			Values: types.PerformanceValues{"ic0": {"a0": 3600}},
		},
	}
	// The workload is given in seconds: the hourly price and performance
	// are scaled down accordingly
	table, err := BuildPriceTable(system, "s", 1)
	if err != nil {
		t.Fatal("For", "the price table", "expected", nil, "got", err)
	}
	if got := table.PricePerSlot["ic0"]; got != 7.0/3600 {
		t.Error(
			"For", "the price per second",
			"expected", 7.0/3600,
			"got", got,
		)
	}
	if got := table.PerfPerSlot["ic0"]["a0"]; got != 1 {
		t.Error(
			"For", "the performance per second",
			"expected", 1,
			"got", got,
		)
	}
}

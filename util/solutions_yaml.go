package util

import (
	"compress/gzip"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/cloud-lever/roap/types"
)

/*
Solution documents extend the problem documents with a Solutions array.
Phase I items carry the reserved allocation; phase II items reference the
phase I solution they were computed from and carry one solving_stats entry
per timeslot. Entities are referenced by id.
*/

type allocationYAML struct {
	Apps            []string  `yaml:"apps"`
	InstanceClasses []string  `yaml:"instance_classes"`
	WorkloadTuples  [][]int   `yaml:"workload_tuples"`
	Repeats         []int     `yaml:"repeats"`
	Values          [][][]int `yaml:"values"`
	Units           string    `yaml:"units"`
}

type reservedAllocationYAML struct {
	InstanceClasses []string `yaml:"instance_classes"`
	VMsNumber       []int    `yaml:"vms_number"`
}

//solutionYAML covers the items of both phases: solving_stats holds a
//single mapping for phase I and an array with one entry per timeslot for
//phase II, so it is decoded in a second pass once the phase is known
type solutionYAML struct {
	ID                 string                    `yaml:"id"`
	Problem            reference                 `yaml:"problem"`
	PreviousPhase      reference                 `yaml:"previous_phase,omitempty"`
	SolvingStats       interface{}               `yaml:"solving_stats,omitempty"`
	GlobalSolvingStats *types.GlobalSolvingStats `yaml:"global_solving_stats,omitempty"`
	ReservedAllocation *reservedAllocationYAML   `yaml:"reserved_allocation,omitempty"`
	Allocation         *allocationYAML           `yaml:"allocation,omitempty"`
}

//Decode the solving_stats node again, now into its phase specific shape
func decodeSolvingStats(node interface{}, target interface{}) error {
	serialized, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(serialized, target)
}

type solutionDocumentYAML struct {
	problemDocumentYAML `yaml:",inline"`
	Solutions           []solutionYAML `yaml:"Solutions,omitempty"`
}

/* Write a solution document
	in:
		@filename	destination path; a .gz suffix enables compression
		@solutionsI	phase I solutions to include
		@solutionsII	phase II solutions to include
	out:
		@error on IO failures
*/
func WriteSolutionsFile(filename string, solutionsI []*types.SolutionI,
	solutionsII []*types.SolutionII) error {

	document := solutionDocumentYAML{}
	for _, solution := range solutionsI {
		document.Solutions = append(document.Solutions, solutionIToYAML(solution))
	}
	for _, solution := range solutionsII {
		document.Solutions = append(document.Solutions, solutionIIToYAML(solution))
	}
	serialized, err := yaml.Marshal(&document)
	if err != nil {
		return err
	}
	return writeMaybeCompressed(filename, serialized)
}

func writeMaybeCompressed(filename string, content []byte) error {
	if !strings.HasSuffix(filename, ".gz") {
		return ioutil.WriteFile(filename, content, 0644)
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := gzip.NewWriter(file)
	if _, err := writer.Write(content); err != nil {
		writer.Close()
		return err
	}
	return writer.Close()
}

func solutionIToYAML(solution *types.SolutionI) solutionYAML {
	stats := solution.SolvingStats
	item := solutionYAML{
		ID:           solution.ID,
		Problem:      reference(solution.Problem.ID),
		SolvingStats: stats,
	}
	if solution.ReservedAllocation != nil {
		item.ReservedAllocation = reservedAllocationToYAML(solution.ReservedAllocation)
	}
	if solution.Allocation != nil {
		item.Allocation = allocationToYAML(solution.Allocation)
	}
	return item
}

func solutionIIToYAML(solution *types.SolutionII) solutionYAML {
	global := solution.GlobalSolvingStats
	item := solutionYAML{
		ID:                 solution.ID,
		Problem:            reference(solution.Problem.ID),
		SolvingStats:       solution.SolvingStats,
		GlobalSolvingStats: &global,
	}
	if solution.PreviousPhase != nil {
		item.PreviousPhase = reference(solution.PreviousPhase.ID)
	}
	if solution.Allocation != nil {
		item.Allocation = allocationToYAML(solution.Allocation)
	}
	return item
}

func reservedAllocationToYAML(allocation *types.ReservedAllocation) *reservedAllocationYAML {
	item := &reservedAllocationYAML{VMsNumber: allocation.VMsNumber}
	for _, iclass := range allocation.InstanceClasses {
		item.InstanceClasses = append(item.InstanceClasses, iclass.ID)
	}
	return item
}

func allocationToYAML(allocation *types.AllocationInfo) *allocationYAML {
	item := &allocationYAML{
		WorkloadTuples: allocation.WorkloadTuples,
		Repeats:        allocation.Repeats,
		Values:         allocation.Values,
		Units:          allocation.Units,
	}
	for _, app := range allocation.Apps {
		item.Apps = append(item.Apps, app.ID)
	}
	for _, iclass := range allocation.InstanceClasses {
		item.InstanceClasses = append(item.InstanceClasses, iclass.ID)
	}
	return item
}

/*Repository holds every entity read from a solution document*/
type Repository struct {
	Problems    map[string]*types.Problem
	SolutionsI  map[string]*types.SolutionI
	SolutionsII map[string]*types.SolutionII
}

/* Read a solution document, including the problems it embeds
	in:
		@filename	path of the YAML file, optionally gzip compressed
	out:
		@Repository with the problems and the solutions of both phases
		@error on IO failures, malformed YAML or dangling references
*/
func ReadSolutionsFile(filename string) (*Repository, error) {
	source, err := readMaybeCompressed(filename)
	if err != nil {
		return nil, err
	}
	document := solutionDocumentYAML{}
	if err := yaml.Unmarshal(source, &document); err != nil {
		return nil, err
	}
	problems, err := resolveProblems(&document.problemDocumentYAML, "")
	if err != nil {
		return nil, err
	}
	repository := &Repository{
		Problems:    problems,
		SolutionsI:  make(map[string]*types.SolutionI),
		SolutionsII: make(map[string]*types.SolutionII),
	}
	// Phase I items first, so that phase II items can reference them
	for _, item := range document.Solutions {
		if item.PreviousPhase != "" {
			continue
		}
		solution, err := solutionIFromYAML(&item, repository)
		if err != nil {
			return nil, err
		}
		repository.SolutionsI[solution.ID] = solution
	}
	for _, item := range document.Solutions {
		if item.PreviousPhase == "" {
			continue
		}
		solution, err := solutionIIFromYAML(&item, repository)
		if err != nil {
			return nil, err
		}
		repository.SolutionsII[solution.ID] = solution
	}
	return repository, nil
}

func solutionIFromYAML(item *solutionYAML, repository *Repository) (*types.SolutionI, error) {
	problem, ok := repository.Problems[string(item.Problem)]
	if !ok {
		return nil, fmt.Errorf("solution %s references unknown problem %s", item.ID, item.Problem)
	}
	solution := &types.SolutionI{ID: item.ID, Problem: problem}
	if item.SolvingStats != nil {
		if err := decodeSolvingStats(item.SolvingStats, &solution.SolvingStats); err != nil {
			return nil, fmt.Errorf("solution %s: %s", item.ID, err.Error())
		}
	}
	if item.ReservedAllocation != nil {
		allocation := &types.ReservedAllocation{VMsNumber: item.ReservedAllocation.VMsNumber}
		for _, id := range item.ReservedAllocation.InstanceClasses {
			iclass, err := findInstanceClass(problem, id)
			if err != nil {
				return nil, fmt.Errorf("solution %s: %s", item.ID, err.Error())
			}
			allocation.InstanceClasses = append(allocation.InstanceClasses, iclass)
		}
		solution.ReservedAllocation = allocation
	}
	allocation, err := allocationFromYAML(item.Allocation, problem, item.ID)
	if err != nil {
		return nil, err
	}
	solution.Allocation = allocation
	return solution, nil
}

func solutionIIFromYAML(item *solutionYAML, repository *Repository) (*types.SolutionII, error) {
	problem, ok := repository.Problems[string(item.Problem)]
	if !ok {
		return nil, fmt.Errorf("solution %s references unknown problem %s", item.ID, item.Problem)
	}
	previous, ok := repository.SolutionsI[string(item.PreviousPhase)]
	if !ok {
		return nil, fmt.Errorf("solution %s references unknown phase I solution %s",
			item.ID, item.PreviousPhase)
	}
	solution := &types.SolutionII{
		ID:            item.ID,
		Problem:       problem,
		PreviousPhase: previous,
	}
	if item.SolvingStats != nil {
		if err := decodeSolvingStats(item.SolvingStats, &solution.SolvingStats); err != nil {
			return nil, fmt.Errorf("solution %s: %s", item.ID, err.Error())
		}
	}
	if item.GlobalSolvingStats != nil {
		solution.GlobalSolvingStats = *item.GlobalSolvingStats
	}
	allocation, err := allocationFromYAML(item.Allocation, problem, item.ID)
	if err != nil {
		return nil, err
	}
	solution.Allocation = allocation
	return solution, nil
}

func allocationFromYAML(item *allocationYAML, problem *types.Problem,
	solutionID string) (*types.AllocationInfo, error) {

	if item == nil {
		return nil, nil
	}
	allocation := &types.AllocationInfo{
		WorkloadTuples: item.WorkloadTuples,
		Repeats:        item.Repeats,
		Values:         item.Values,
		Units:          item.Units,
	}
	for _, id := range item.Apps {
		app, err := findApp(problem, id)
		if err != nil {
			return nil, fmt.Errorf("solution %s: %s", solutionID, err.Error())
		}
		allocation.Apps = append(allocation.Apps, app)
	}
	for _, id := range item.InstanceClasses {
		iclass, err := findInstanceClass(problem, id)
		if err != nil {
			return nil, fmt.Errorf("solution %s: %s", solutionID, err.Error())
		}
		allocation.InstanceClasses = append(allocation.InstanceClasses, iclass)
	}
	return allocation, nil
}

func findApp(problem *types.Problem, id string) (*types.App, error) {
	for _, app := range problem.Apps() {
		if app.ID == id {
			return app, nil
		}
	}
	return nil, fmt.Errorf("unknown app %s", id)
}

func findInstanceClass(problem *types.Problem, id string) (*types.InstanceClass, error) {
	for _, iclass := range problem.InstanceClasses {
		if iclass.ID == id {
			return iclass, nil
		}
	}
	return nil, fmt.Errorf("unknown instance class %s", id)
}

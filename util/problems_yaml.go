package util

import (
	"compress/gzip"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/cloud-lever/roap/types"
)

/*
Problem documents are YAML files with the arrays Apps, Limiting_sets,
Instance_classes, Performances, Workloads and Problems. Items cross
reference each other by id; documents written with YAML anchors and
aliases are accepted too, since an aliased entity resolves to its mapping
and the reference type below picks the id from it. Files with the .gz
suffix are decompressed transparently.
*/

//reference is an id pointing to another item of the document. It accepts
//both a plain id string and an aliased mapping with an id field
type reference string

func (r *reference) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var plain string
	if err := unmarshal(&plain); err == nil {
		*r = reference(plain)
		return nil
	}
	var item struct {
		ID string `yaml:"id"`
	}
	if err := unmarshal(&item); err != nil {
		return err
	}
	*r = reference(item.ID)
	return nil
}

type appYAML struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type limitingSetYAML struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	MaxVMs   int     `yaml:"max_vms"`
	MaxCores float64 `yaml:"max_cores"`
}

type instanceClassYAML struct {
	ID           string      `yaml:"id"`
	Name         string      `yaml:"name"`
	LimitingSets []reference `yaml:"limiting_sets"`
	MaxVMs       int         `yaml:"max_vms"`
	Price        float64     `yaml:"price"`
	TimeUnit     string      `yaml:"time_unit"`
	IsReserved   bool        `yaml:"is_reserved"`
	IsPrivate    bool        `yaml:"is_private"`
	Cores        float64     `yaml:"cores"`
}

type performanceValueYAML struct {
	InstanceClass reference `yaml:"instance_class"`
	App           reference `yaml:"app"`
	Value         float64   `yaml:"value"`
}

type performanceSetYAML struct {
	ID       string                 `yaml:"id"`
	TimeUnit string                 `yaml:"time_unit"`
	Values   []performanceValueYAML `yaml:"values"`
}

type workloadYAML struct {
	ID                    string    `yaml:"id"`
	Description           string    `yaml:"description"`
	App                   reference `yaml:"app"`
	TimeUnit              string    `yaml:"time_unit"`
	Values                []int     `yaml:"values"`
	Filename              string    `yaml:"filename"`
	IntraSlotDistribution string    `yaml:"intra_slot_distribution"`
}

type problemYAML struct {
	ID              string      `yaml:"id"`
	Name            string      `yaml:"name"`
	Description     string      `yaml:"description"`
	Workloads       []reference `yaml:"workloads"`
	InstanceClasses []reference `yaml:"instance_classes"`
	Performances    reference   `yaml:"performances"`
}

type problemDocumentYAML struct {
	Apps            []appYAML            `yaml:"Apps,omitempty"`
	LimitingSets    []limitingSetYAML    `yaml:"Limiting_sets,omitempty"`
	InstanceClasses []instanceClassYAML  `yaml:"Instance_classes,omitempty"`
	Performances    []performanceSetYAML `yaml:"Performances,omitempty"`
	Workloads       []workloadYAML       `yaml:"Workloads,omitempty"`
	Problems        []problemYAML        `yaml:"Problems,omitempty"`
}

/* Read a problem document
	in:
		@filename	path of the YAML file, optionally gzip compressed
	out:
		@map from problem id to the resolved problem
		@error on IO failures, malformed YAML or dangling references
*/
func ReadProblemsFile(filename string) (map[string]*types.Problem, error) {
	source, err := readMaybeCompressed(filename)
	if err != nil {
		return nil, err
	}
	return ProblemsFromYAML(source, filepath.Dir(filename))
}

/* Parse a problem document already loaded in memory
	in:
		@source	the YAML content
		@baseDir	directory for resolving workload filenames
	out:
		@map from problem id to the resolved problem
		@error on malformed YAML or dangling references
*/
func ProblemsFromYAML(source []byte, baseDir string) (map[string]*types.Problem, error) {
	document := problemDocumentYAML{}
	if err := yaml.Unmarshal(source, &document); err != nil {
		return nil, err
	}
	return resolveProblems(&document, baseDir)
}

func readMaybeCompressed(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if strings.HasSuffix(filename, ".gz") {
		reader, err := gzip.NewReader(file)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return ioutil.ReadAll(reader)
	}
	return ioutil.ReadAll(file)
}

//Build the domain entities out of the document, resolving every reference
func resolveProblems(document *problemDocumentYAML, baseDir string) (map[string]*types.Problem, error) {
	apps := make(map[string]*types.App)
	for _, item := range document.Apps {
		apps[item.ID] = &types.App{ID: item.ID, Name: item.Name}
	}
	limitingSets := make(map[string]*types.LimitingSet)
	for _, item := range document.LimitingSets {
		limitingSets[item.ID] = &types.LimitingSet{
			ID:       item.ID,
			Name:     item.Name,
			MaxVMs:   item.MaxVMs,
			MaxCores: item.MaxCores,
		}
	}

	instanceClasses := make(map[string]*types.InstanceClass)
	for _, item := range document.InstanceClasses {
		iclass := &types.InstanceClass{
			ID:         item.ID,
			Name:       item.Name,
			MaxVMs:     item.MaxVMs,
			Price:      item.Price,
			TimeUnit:   item.TimeUnit,
			IsReserved: item.IsReserved,
			IsPrivate:  item.IsPrivate,
			Cores:      item.Cores,
		}
		if iclass.Cores == 0 {
			iclass.Cores = 1
		}
		for _, ref := range item.LimitingSets {
			lset, ok := limitingSets[string(ref)]
			if !ok {
				return nil, fmt.Errorf("instance class %s references unknown limiting set %s",
					item.ID, ref)
			}
			iclass.LimitingSets = append(iclass.LimitingSets, lset)
		}
		instanceClasses[item.ID] = iclass
	}

	performances := make(map[string]*types.PerformanceSet)
	for _, item := range document.Performances {
		values := make(types.PerformanceValues)
		for _, entry := range item.Values {
			if _, ok := instanceClasses[string(entry.InstanceClass)]; !ok {
				return nil, fmt.Errorf("performance set %s references unknown instance class %s",
					item.ID, entry.InstanceClass)
			}
			if _, ok := apps[string(entry.App)]; !ok {
				return nil, fmt.Errorf("performance set %s references unknown app %s",
					item.ID, entry.App)
			}
			perApp, ok := values[string(entry.InstanceClass)]
			if !ok {
				perApp = make(map[string]float64)
				values[string(entry.InstanceClass)] = perApp
			}
			perApp[string(entry.App)] = entry.Value
		}
		performances[item.ID] = &types.PerformanceSet{
			ID:       item.ID,
			TimeUnit: item.TimeUnit,
			Values:   values,
		}
	}

	workloads := make(map[string]*types.Workload)
	for _, item := range document.Workloads {
		app, ok := apps[string(item.App)]
		if !ok {
			return nil, fmt.Errorf("workload %s references unknown app %s", item.ID, item.App)
		}
		if (len(item.Values) > 0) == (item.Filename != "") {
			return nil, fmt.Errorf("workload %s needs exactly one of values or filename", item.ID)
		}
		values := item.Values
		if item.Filename != "" {
			read, err := readWorkloadValues(filepath.Join(baseDir, item.Filename))
			if err != nil {
				return nil, fmt.Errorf("workload %s: %s", item.ID, err.Error())
			}
			values = read
		}
		distribution := item.IntraSlotDistribution
		if distribution == "" {
			distribution = "uniform"
		}
		workloads[item.ID] = &types.Workload{
			ID:                    item.ID,
			Description:           item.Description,
			App:                   app,
			TimeUnit:              item.TimeUnit,
			Values:                values,
			IntraSlotDistribution: distribution,
			Filename:              item.Filename,
		}
	}

	problems := make(map[string]*types.Problem)
	for _, item := range document.Problems {
		problem := &types.Problem{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
		}
		for _, ref := range item.Workloads {
			workload, ok := workloads[string(ref)]
			if !ok {
				return nil, fmt.Errorf("problem %s references unknown workload %s", item.ID, ref)
			}
			problem.Workloads = append(problem.Workloads, workload)
		}
		for _, ref := range item.InstanceClasses {
			iclass, ok := instanceClasses[string(ref)]
			if !ok {
				return nil, fmt.Errorf("problem %s references unknown instance class %s", item.ID, ref)
			}
			problem.InstanceClasses = append(problem.InstanceClasses, iclass)
		}
		performanceSet, ok := performances[string(item.Performances)]
		if !ok {
			return nil, fmt.Errorf("problem %s references unknown performance set %s",
				item.ID, item.Performances)
		}
		problem.Performances = performanceSet
		problems[item.ID] = problem
	}
	return problems, nil
}

//Workload files hold one integer per line, or comma separated values
func readWorkloadValues(filename string) ([]int, error) {
	source, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	fields := strings.FieldsFunc(string(source), func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	})
	values := make([]int, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid workload value %q in %s", field, filename)
		}
		values = append(values, value)
	}
	return values, nil
}

/* Validate a problem document
	in:
		@filename	path of the YAML file
	out:
		@[]string	ids of the problems found, in no particular order
		@error	first structural defect found, nil if the document is valid
*/
func ValidateProblemsFile(filename string) ([]string, error) {
	problems, err := ReadProblemsFile(filename)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(problems))
	for id, problem := range problems {
		if err := types.CheckValidProblem(problem); err != nil {
			return nil, fmt.Errorf("problem %s: %s", id, err.Error())
		}
		ids = append(ids, id)
	}
	return ids, nil
}

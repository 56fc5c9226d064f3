package util

import (
	"compress/gzip"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestReadProblemsFile(t *testing.T) {
	problems, err := ReadProblemsFile(filepath.Join("testdata", "problems_test.yml"))
	if err != nil {
		t.Fatal(
			"For", "testdata/problems_test.yml",
			"expected", nil,
			"got", err,
		)
	}
	problem, ok := problems["problem1"]
	if !ok {
		t.Fatal(
			"For", "the problems of the document",
			"expected", "problem1",
			"got", problems,
		)
	}
	if len(problem.Workloads) != 2 || len(problem.InstanceClasses) != 2 {
		t.Error(
			"For", "the size of problem1",
			"expected", "2 workloads and 2 instance classes",
			"got", problem,
		)
	}
	// The second workload comes from the referenced csv file
	if !reflect.DeepEqual(problem.Workloads[1].Values, []int{1003, 1200, 1194, 1003}) {
		t.Error(
			"For", "the workload read from wl1.csv",
			"expected", []int{1003, 1200, 1194, 1003},
			"got", problem.Workloads[1].Values,
		)
	}
	// Cores defaults to one when the document does not give it
	if problem.InstanceClasses[0].Cores != 1 {
		t.Error(
			"For", "the default cores",
			"expected", 1,
			"got", problem.InstanceClasses[0].Cores,
		)
	}
	if !problem.InstanceClasses[1].IsReserved {
		t.Error(
			"For", "the reserved flag",
			"expected", true,
			"got", false,
		)
	}
	value, ok := problem.Performances.Values.Get(problem.InstanceClasses[1], problem.Workloads[1].App)
	if !ok || value != 500 {
		t.Error(
			"For", "the performance of m3large_r and a1",
			"expected", 500,
			"got", value,
		)
	}
}

func TestValidateProblemsFile(t *testing.T) {
	ids, err := ValidateProblemsFile(filepath.Join("testdata", "problems_test.yml"))
	if err != nil {
		t.Error(
			"For", "a valid document",
			"expected", nil,
			"got", err,
		)
	}
	if len(ids) != 1 || ids[0] != "problem1" {
		t.Error(
			"For", "the validated problems",
			"expected", []string{"problem1"},
			"got", ids,
		)
	}
}

func TestReadCompressedProblemsFile(t *testing.T) {
	source, err := ioutil.ReadFile(filepath.Join("testdata", "problems_test.yml"))
	if err != nil {
		t.Fatal("For", "the fixture", "expected", nil, "got", err)
	}
	directory, err := ioutil.TempDir("", "problems")
	if err != nil {
		t.Fatal("For", "the temp directory", "expected", nil, "got", err)
	}
	defer os.RemoveAll(directory)
	compressed := filepath.Join(directory, "problems_test.yml.gz")
	file, err := os.Create(compressed)
	if err != nil {
		t.Fatal("For", "the compressed file", "expected", nil, "got", err)
	}
	writer := gzip.NewWriter(file)
	writer.Write(source)
	writer.Close()
	file.Close()
	// The workload file is referenced relative to the document
	wl1, _ := ioutil.ReadFile(filepath.Join("testdata", "wl1.csv"))
	ioutil.WriteFile(filepath.Join(directory, "wl1.csv"), wl1, 0644)

	problems, err := ReadProblemsFile(compressed)
	if err != nil {
		t.Fatal(
			"For", "a compressed document",
			"expected", nil,
			"got", err,
		)
	}
	if _, ok := problems["problem1"]; !ok {
		t.Error(
			"For", "the problems of the compressed document",
			"expected", "problem1",
			"got", problems,
		)
	}
}

func TestUnknownReferenceFails(t *testing.T) {
	source := []byte(`
Apps:
  - {id: a0, name: app0}
Workloads:
  - {id: wl0, app: missing, time_unit: h, values: [1, 2]}
`)
	if _, err := ProblemsFromYAML(source, "."); err == nil {
		t.Error(
			"For", "a dangling app reference",
			"expected", "an error",
			"got", nil,
		)
	}
}

func TestWorkloadNeedsValuesOrFilename(t *testing.T) {
	source := []byte(`
Apps:
  - {id: a0, name: app0}
Workloads:
  - {id: wl0, app: a0, time_unit: h}
`)
	if _, err := ProblemsFromYAML(source, "."); err == nil {
		t.Error(
			"For", "a workload without values nor filename",
			"expected", "an error",
			"got", nil,
		)
	}
}

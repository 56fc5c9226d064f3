package util

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

//Struct that models the settings passed to the optimization backend
type SolverComponent struct {
	FracGap    float64 `yaml:"frac-gap"`
	MaxSeconds float64 `yaml:"max-seconds"`
	Threads    int     `yaml:"threads"`
	Seed       int     `yaml:"seed"`
}

//Struct that models the connection to the solutions database
type StorageComponent struct {
	Server   string `yaml:"server"`
	Database string `yaml:"database"`
}

//Struct that models the external forecasting component
type ForecastComponent struct {
	Endpoint    string `yaml:"endpoint"`
	Granularity string `yaml:"granularity"`
}

//Struct that models the system configuration of the planner
type SystemConfiguration struct {
	Host              string            `yaml:"host"`
	LogFile           string            `yaml:"log-file"`
	SolverComponent   SolverComponent   `yaml:"solver-component"`
	StorageComponent  StorageComponent  `yaml:"storage-component"`
	ForecastComponent ForecastComponent `yaml:"forecasting-component"`
}

//Method that parses the configuration file into a struct type
func ReadConfigFile(configFile string) (SystemConfiguration, error) {
	systemConfig := SystemConfiguration{}
	source, err := ioutil.ReadFile(configFile)
	if err != nil {
		return systemConfig, err
	}
	err = yaml.Unmarshal(source, &systemConfig)
	if err != nil {
		return systemConfig, err
	}
	if systemConfig.StorageComponent.Server == "" {
		systemConfig.StorageComponent.Server = DEFAULT_DB_SERVER_SOLUTIONS
	}
	if systemConfig.StorageComponent.Database == "" {
		systemConfig.StorageComponent.Database = DEFAULT_DB_SOLUTIONS
	}
	return systemConfig, nil
}

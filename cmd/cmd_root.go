package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"

	"github.com/cloud-lever/roap/util"
)

var (
	// VERSION is set by Execute before the commands run
	VERSION string
	log     = logging.MustGetLogger("roap")
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "roap",
	Short: "Access the allocation planner from the command line",
	Long: `
   ___  ____  ___   ___
  / _ \/ __ \/ _ | / _ \
 / , _/ /_/ / __ |/ ___/
/_/|_|\____/_/ |_/_/

Plans the cheapest mix of reserved and on-demand VMs able to
serve the predicted workload of a set of applications.
	`,
}

// Execute adds all child commands to the root command
func Execute() {
	VERSION = "1.0"
	setLogger()
	RootCmd.AddCommand(versionCmd)
	RootCmd.AddCommand(validateCmd)
	RootCmd.AddCommand(solveCmd)
	RootCmd.AddCommand(startCmd)

	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

//Set where and how to write logs
func setLogger() {
	logFile := util.DEFAULT_LOGFILE
	os.MkdirAll(filepath.Dir(logFile), 0700)
	file, _ := os.OpenFile(logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	multiOutput := io.MultiWriter(file, os.Stdout)
	backend := logging.NewLogBackend(multiOutput, "", 0)
	format := logging.MustStringFormatter(
		`%{color}%{time:15:04:05.000} %{shortfunc} > %{level:.4s} %{id:03x}%{color:reset} %{message}`)
	backendFormatter := logging.NewBackendFormatter(backend, format)
	logging.SetBackend(backendFormatter)
}

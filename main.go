package main

import (
	"github.com/cloud-lever/roap/cmd"
)

// @title ROAP CLI
// @version 1.0
// @description start point for the CLI

func main() {
	cmd.Execute()
}

package main

import (
	"github.com/prasadnitish/StrollerScout-sub001/cmd"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.SetVersion(version, buildTime)
	cmd.Execute()
}

package main

import "github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/cli"

// Version info (set during build)
var Version = "dev"

func main() {
	cli.SetVersion(Version)
	cli.Execute()
}

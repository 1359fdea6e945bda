package main

import (
	"fmt"

	ttyq "github.com/ttyq/ttyq/src"
	"github.com/ttyq/ttyq/src/protector"
	"github.com/ttyq/ttyq/src/util"
)

var version string = "0.3"
var revision string = "devel"

func main() {
	protector.Protect()
	options := ttyq.ParseOptions()
	if options.Version {
		if len(revision) > 0 {
			fmt.Printf("%s (%s)\n", version, revision)
		} else {
			fmt.Println(version)
		}
		return
	}
	util.Exit(ttyq.Run(options))
}

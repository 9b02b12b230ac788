package main

import (
	"os"
	_ "time/tzdata"

	"github.com/ansindait/aci-system-sub001/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

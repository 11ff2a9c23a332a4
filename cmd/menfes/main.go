package main

import (
	"log"

	corecmd "github.com/m3rciful/menfes/core/cmd"
	"github.com/m3rciful/menfes/internal/app"
)

func main() {
	if err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		Build:             app.Build,
	}); err != nil {
		log.Fatal(err)
	}
}

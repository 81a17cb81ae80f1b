package main

import (
	"os"

	"tariff/cmd/tariff/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

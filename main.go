// Command passage scores patient risk with explainable clinical policies.
package main

import (
	"github.com/passagehealth/passage/cmd"
	"github.com/passagehealth/passage/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("passage", err)
	}
}

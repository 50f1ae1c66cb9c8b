// Package main is the entry point for the allmerge CLI.
package main

import "allmerge.dev/pkg/allmerge/cmd"

func main() {
	cmd.Execute()
}

// Package main provides the semreg CLI for compiling and querying
// semantic registries.
package main

func main() {
	Execute()
}

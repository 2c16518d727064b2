package main

import "github.com/sambabib/dependency-version-checker/cmd"

func main() {
	cmd.Execute()
}

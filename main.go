package main

import "github.com/bneutra/iam-auto-assume/cmd"

func main() {
	cmd.Execute()
}

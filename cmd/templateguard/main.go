package main

import "github.com/templateguard/templateguard/cmd/templateguard/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/pkeller/policyvault/cmd"

func main() {
	cmd.Execute()
}

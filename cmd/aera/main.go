package main

import "github.com/aera-dev/aera/cmd"

func main() {
	cmd.Execute()
}

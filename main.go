package main

import "github.com/vaspflow/vaspflow/cmd"

func main() {
	cmd.Execute()
}

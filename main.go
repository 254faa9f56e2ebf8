package main

import "coldcall-sim/backend/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/ben-haas/clawhouse/cmd"

func main() {
	cmd.Execute()
}

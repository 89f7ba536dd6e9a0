// Command ahbsim runs AHB-Lite bus systems described in YAML files.
package main

import "github.com/sarchlab/ahbsim/cmd/ahbsim/cmd"

func main() {
	cmd.Execute()
}

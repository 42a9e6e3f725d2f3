package main

import "github.com/gqlaudit/gqlaudit/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}

package main

import "github.com/frahmantamala/worklog-management/cmd"

func main() {
	cmd.Execute()
}

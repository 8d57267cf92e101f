package main

import "github.com/frahmantamala/courseware-platform/cmd"

func main() {
	cmd.Execute()
}

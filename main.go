package main

import "vehicle-insights/cmd"

func main() {
	cmd.Execute()
}

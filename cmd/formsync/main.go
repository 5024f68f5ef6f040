package main

import "github.com/turbolytics/formsync/internal/cmd"

func main() {
	cmd.Execute()
}

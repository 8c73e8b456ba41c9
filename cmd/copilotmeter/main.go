package main

import "github.com/tnunamak/copilotmeter/internal/cli"

func main() {
	cli.Execute()
}

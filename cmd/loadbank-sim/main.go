package main

import "github.com/oshokin/loadbank-hmi/cmd/loadbank-sim/cmd"

func main() {
	cmd.Execute()
}

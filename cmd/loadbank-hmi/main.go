package main

import "github.com/oshokin/loadbank-hmi/cmd/loadbank-hmi/cmd"

func main() {
	cmd.Execute()
}

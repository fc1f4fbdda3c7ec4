package main

import "github.com/ecomops/devicegate/cmd"

func main() {
	cmd.Execute()
}

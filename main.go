package main

import "github.com/jaypeewhat/ThriftStore/cmd"

func main() {
	cmd.Execute()
}

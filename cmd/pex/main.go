package main

import "go.minekube.com/pex/pkg/cmd/pex"

func main() {
	pex.Execute()
}

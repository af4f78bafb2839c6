package main

import "github.com/nfrund/confirmflow/cmd/confirmctl/cmd"

func main() {
	cmd.Execute()
}

package main

import "RelationshipManager/client/rede-cli/cmd"

func main() {
	cmd.Execute()
}

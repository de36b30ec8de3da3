package main

import "github.com/cemreeren625-ui/projeyeni/cmd"

func main() {
	cmd.Execute()
}

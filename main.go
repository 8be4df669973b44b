package main

import "github.com/tayloree/dealchef/cmd"

func main() {
	cmd.Execute()
}

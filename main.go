package main

import "github.com/tarefa360/tarefa360/cmd"

func main() {
	cmd.Execute()
}

/*
Copyright © 2026 JACOB ARTHURS
*/
package main

import "github.com/jacobarthurs/schemabench/cmd"

func main() {
	cmd.Execute()
}

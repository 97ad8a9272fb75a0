package main

import "github.com/homeinv/barcode-router/cmd"

func main() {
	cmd.Execute()
}

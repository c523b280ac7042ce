package main

import (
	"fmt"
	"os"
)

func helper() {
	os.Exit(2) // allowed outside main.main
}

func main() {
	fmt.Println("shutting down")
	os.Exit(1) // want "avoid using os.Exit in main.main"
}

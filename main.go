package main

import (
	"log"

	"github.com/hireloop/mailtriage/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

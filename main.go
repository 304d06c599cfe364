package main

import (
	"log"

	"github.com/talentmatch/talentmatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"log"

	"github.com/anoixa/pos-admin/cmd"
	"github.com/anoixa/pos-admin/config"
)

func main() {
	log.Printf("pos-admin %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}

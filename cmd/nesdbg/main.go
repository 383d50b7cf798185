// Package main implements nesdbg, a line based client for the nescore
// debug service.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"nescore/internal/debugserver"
)

func main() {
	addr := flag.String("addr", "localhost:50051", "Address of the nescore debug service")
	flag.Parse()

	client, err := debugserver.Dial(*addr)
	if err != nil {
		log.Fatalf("did not connect: %v", err)
	}
	defer client.Close()

	fmt.Printf("nesdbg connected to %s. Type 'help' for commands.\n", *addr)
	repl(client, os.Stdin, os.Stdout)
}

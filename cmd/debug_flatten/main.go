package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"cloudsync/core/flatten"

	"go.uber.org/zap"
)

// debug_flatten prints the dotted paths of a JSON payload, which is what a
// field-map entry has to name.
func main() {
	in := io.Reader(os.Stdin)
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	var payload any
	if err := json.NewDecoder(in).Decode(&payload); err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewDevelopment()
	flat := flatten.New(logger).Flatten(payload)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, _ := json.Marshal(flat[k])
		fmt.Printf("%-40s %s\n", k, v)
	}
}

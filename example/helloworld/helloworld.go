// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/yeetrun/argbind/pkg/argbind"
)

type params struct {
	Count    int           `opt:"-n|--count <N>" help:"Number of greetings, 0 for forever" default:"0"`
	Interval time.Duration `opt:"-i|--interval <DURATION>" default:"2s"`
	Names    []string      `arg:"" multi:"true" help:"Who to greet"`
}

func main() {
	p, _, err := argbind.Parse[params](os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	who := "World"
	if len(p.Names) > 0 {
		who = strings.Join(p.Names, ", ")
	}
	for i := 0; p.Count == 0 || i < p.Count; i++ {
		fmt.Printf("Hello, %s!\n", who)
		time.Sleep(p.Interval)
	}
}

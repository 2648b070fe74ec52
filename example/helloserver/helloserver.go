// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/yeetrun/argbind/pkg/argbind"
	"github.com/yeetrun/argbind/pkg/valueparse"
)

type params struct {
	Port     valueparse.Port `opt:"-p|--port <PORT>" help:"Port to listen on" default:"8080"`
	Greeting string          `opt:"-g|--greeting <TEXT>" help:"Response body" default:"Hello, world!"`
	Timeout  time.Duration   `opt:"--read-timeout <DURATION>" help:"Request read timeout" default:"10s"`
	Env      bool            `opt:"--env" help:"Serve the environment at /env"`
	Help     bool            `helpopt:""`
}

func main() {
	log.SetFlags(0)
	app := &argbind.App{
		Name:        "helloserver",
		Description: "Serve a greeting over HTTP.",
		Examples:    []string{"helloserver --port 9090 --greeting hi"},
	}
	var p params
	if _, err := app.Run(&p, os.Args[1:]); err != nil {
		if errors.Is(err, argbind.ErrShown) {
			os.Exit(2)
		}
		log.Fatal(err)
	}

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", p.Port),
		ReadTimeout: p.Timeout,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p.Env && r.URL.Path == "/env" {
				fmt.Fprintln(w, os.Environ())
				return
			}
			fmt.Fprintln(w, p.Greeting)
		}),
	}
	log.Printf("listening on %s", srv.Addr)
	log.Fatal(srv.ListenAndServe())
}

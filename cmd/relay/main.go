// Package main provides the Relay framework CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/relay-ml/relay/backend/cpu"
	"github.com/relay-ml/relay/dataset"
	"github.com/relay-ml/relay/internal/bundle"
	"github.com/relay-ml/relay/internal/graph"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Relay %s\n", version)
			return
		case "inspect":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "usage: relay inspect <dataset-dir | bundle.relay>")
				os.Exit(2)
			}
			inspect(os.Args[2])
			return
		case "pack":
			if len(os.Args) < 4 {
				fmt.Fprintln(os.Stderr, "usage: relay pack <dataset-dir> <out.relay>")
				os.Exit(2)
			}
			pack(os.Args[2], os.Args[3])
			return
		}
	}

	fmt.Println("Relay - Message-Passing Graph Compute for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version              Show version")
	fmt.Println("  inspect <path>       Load a dataset directory or .relay bundle and print its summary")
	fmt.Println("  pack <dir> <file>    Bundle a dataset directory into a single .relay file")
}

func load(path string) *graph.Graph[*cpu.Backend] {
	var g *graph.Graph[*cpu.Backend]
	var err error
	if strings.HasSuffix(path, ".relay") {
		g, err = bundle.Load(path, cpu.New())
	} else {
		g, err = dataset.Load(path, cpu.New())
	}
	if err != nil {
		logrus.WithError(err).Fatal("failed to load graph")
	}
	return g
}

// inspect loads a dataset or bundle and prints topology statistics.
func inspect(path string) {
	g := load(path)

	maxIn, maxOut := 0, 0
	for v := 0; v < g.NumNodes(); v++ {
		maxIn = max(maxIn, g.InDegree(v))
		maxOut = max(maxOut, g.OutDegree(v))
	}

	fmt.Printf("nodes:          %d\n", g.NumNodes())
	fmt.Printf("edges:          %d\n", g.NumEdges())
	fmt.Printf("max in-degree:  %d\n", maxIn)
	fmt.Printf("max out-degree: %d\n", maxOut)
	fmt.Printf("node features:  %v\n", g.NodeFrame().Keys())
	fmt.Printf("edge features:  %v\n", g.EdgeFrame().Keys())
}

// pack loads a dataset directory and writes it as a .relay bundle.
func pack(dir, out string) {
	g := load(dir)

	name := filepath.Base(filepath.Clean(dir))
	if err := bundle.Save(out, name, g); err != nil {
		logrus.WithError(err).Fatal("failed to write bundle")
	}

	info, err := os.Stat(out)
	if err != nil {
		logrus.WithError(err).Fatal("failed to stat bundle")
	}
	logrus.WithFields(logrus.Fields{
		"bundle": out,
		"nodes":  g.NumNodes(),
		"edges":  g.NumEdges(),
		"size":   humanize.Bytes(uint64(info.Size())),
	}).Info("bundle written")
}

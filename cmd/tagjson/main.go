// Copyright 2024-2026 The TagJSON Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// tagjson - inspection and canonicalization tool for tagged JSON documents
//
// Usage:
//
//	tagjson inspect [-manifest types.toml] [file]  List tagged objects in a document
//	tagjson fmt [-indent] [-o out.json] [file]     Re-emit a document in canonical form
//	tagjson id                                     Mint a fresh type identifier
//	tagjson version                                Print version info
//
// If no file is given, input is read from stdin. Files ending in .gz are
// read and written through gzip.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"

	"tagjson.dev/tagjson"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "inspect":
		runInspect(os.Args[2:])
	case "fmt":
		runFmt(os.Args[2:])
	case "id":
		fmt.Println(tagjson.NewTypeID())
	case "version":
		fmt.Printf("tagjson %s\n", tagjson.Version)
	case "help", "-h", "--help":
		printUsage()
	default:
		logger.Error().Str("command", os.Args[1]).Msg("unknown command")
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage:
  tagjson inspect [-manifest types.toml] [file]  list tagged objects in a document
  tagjson fmt [-indent] [-o out.json] [file]     re-emit a document in canonical form
  tagjson id                                     mint a fresh type identifier
  tagjson version                                print version info

Input is stdin when no file is given. Files ending in .gz are gzipped.`)
}

// A manifest labels type identifiers with human-readable names for
// inspection output. It has a single [types] table of id = "Name" pairs.
type manifest struct {
	Types map[string]string `toml:"types"`
}

func loadManifest(path string) manifest {
	var m manifest
	if path == "" {
		return m
	}
	if _, err := toml.DecodeFile(path, &m); err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("load manifest")
	}
	logger.Debug().Int("types", len(m.Types)).Msg("manifest loaded")
	return m
}

func runInspect(args []string) {
	flags := flag.NewFlagSet("inspect", flag.ExitOnError)
	manifestPath := flags.String("manifest", "", "TOML manifest labeling type identifiers")
	flags.Parse(args)

	names := loadManifest(*manifestPath)
	data := readInput(flags.Arg(0))
	tree, err := tagjson.NewRegistry().Unmarshal(data)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse document")
	}
	found := 0
	walk(tree, "$", func(path string, doc map[string]any) {
		found++
		id, _ := doc[tagjson.TypeKey].(string)
		label := names.Types[id]
		if label == "" {
			label = "(unknown)"
		}
		fmt.Printf("%s\t%s\t%s\t%d fields\n", path, id, label, len(doc)-1)
	})
	logger.Info().Int("tagged", found).Msg("inspect done")
}

// walk visits every tagged object in the tree, parent before children,
// reporting a rooted path for each.
func walk(node any, path string, visit func(string, map[string]any)) {
	switch n := node.(type) {
	case map[string]any:
		if _, ok := n[tagjson.TypeKey].(string); ok {
			visit(path, n)
		}
		keys := make([]string, 0, len(n))
		for key := range n {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if key == tagjson.TypeKey {
				continue
			}
			walk(n[key], path+"."+key, visit)
		}
	case []any:
		for i, elem := range n {
			walk(elem, fmt.Sprintf("%s[%d]", path, i), visit)
		}
	}
}

func runFmt(args []string) {
	flags := flag.NewFlagSet("fmt", flag.ExitOnError)
	indent := flags.Bool("indent", false, "pretty-print with two-space indentation")
	outPath := flags.String("o", "", "write output to file instead of stdout")
	flags.Parse(args)

	data := readInput(flags.Arg(0))
	registry := tagjson.NewRegistry()
	tree, err := registry.Unmarshal(data)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse document")
	}
	out, err := registry.Marshal(tree)
	if err != nil {
		logger.Fatal().Err(err).Msg("re-encode document")
	}
	if *indent {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, out, "", "  "); err != nil {
			logger.Fatal().Err(err).Msg("indent output")
		}
		out = pretty.Bytes()
	}
	out = append(out, '\n')
	writeOutput(*outPath, out)
}

func readInput(path string) []byte {
	var reader io.Reader = os.Stdin
	if path != "" && path != "-" {
		file, err := os.Open(path)
		if err != nil {
			logger.Fatal().Err(err).Msg("open input")
		}
		defer file.Close()
		reader = file
		if strings.HasSuffix(path, ".gz") {
			gz, err := gzip.NewReader(file)
			if err != nil {
				logger.Fatal().Err(err).Msg("open gzip input")
			}
			defer gz.Close()
			reader = gz
		}
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		logger.Fatal().Err(err).Msg("read input")
	}
	return data
}

func writeOutput(path string, data []byte) {
	if path == "" || path == "-" {
		os.Stdout.Write(data)
		return
	}
	file, err := os.Create(path)
	if err != nil {
		logger.Fatal().Err(err).Msg("create output")
	}
	defer file.Close()
	var writer io.Writer = file
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(file)
		defer gz.Close()
		writer = gz
	}
	if _, err := writer.Write(data); err != nil {
		logger.Fatal().Err(err).Msg("write output")
	}
}

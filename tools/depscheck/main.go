package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

const modulePath = "kaetram/client/"

type packageInfo struct {
	ImportPath string
	Imports    []string
}

// rule forbids packages under From from importing anything under To.
type rule struct {
	From string
	To   []string
}

// rules keep the world model below movement, movement below sync and the
// wire layer independent of both.
var rules = []rule{
	{From: "internal/world", To: []string{"internal/"}},
	{From: "internal/spatial", To: []string{"internal/movement", "internal/netsync", "internal/net", "internal/sim"}},
	{From: "internal/pathfinding", To: []string{"internal/movement", "internal/netsync", "internal/net", "internal/sim"}},
	{From: "internal/transition", To: []string{"internal/"}},
	{From: "internal/movement", To: []string{"internal/netsync", "internal/net", "internal/sim", "internal/render"}},
	{From: "internal/net", To: []string{"internal/movement", "internal/netsync", "internal/sim", "internal/entity"}},
	{From: "internal/netsync", To: []string{"internal/sim", "internal/render", "internal/net/ws", "internal/net/natsbus"}},
	{From: "internal/render", To: []string{"internal/net", "internal/netsync", "internal/sim"}},
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	violations, err := check(bytes.NewReader(output))
	if err != nil {
		fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
		os.Exit(1)
	}
	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}

func check(r io.Reader) ([]string, error) {
	decoder := json.NewDecoder(r)
	var violations []string
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		for _, imp := range pkg.Imports {
			if forbidden(pkg.ImportPath, imp) {
				violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
			}
		}
	}
	sort.Strings(violations)
	return violations, nil
}

func forbidden(from, imp string) bool {
	if !strings.HasPrefix(from, modulePath) || !strings.HasPrefix(imp, modulePath) {
		return false
	}
	from = strings.TrimPrefix(from, modulePath)
	imp = strings.TrimPrefix(imp, modulePath)
	for _, r := range rules {
		if !within(from, r.From) {
			continue
		}
		for _, to := range r.To {
			if strings.HasPrefix(imp, to) && !within(imp, r.From) {
				return true
			}
		}
	}
	return false
}

func within(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Command islarun is a thin demo CLI around package engine, grounded on
// isla's own src/main.rs (a thread-count flag, build-a-test-Frame-then-run
// when no real IR loader is wired up). Go has no lalrpop/getopts
// equivalent in the retrieval pack, so the flag parsing uses the standard
// library's flag package (see DESIGN.md). It accepts only -threads and -v
// and reads no architecture file: no Sail-IR grammar ships in this module,
// so it runs one built-in demo function.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/isla-sym/isla/collector"
	"github.com/isla-sym/isla/engine"
	"github.com/isla-sym/isla/internal/islalog"
	"github.com/isla-sym/isla/ir"
	"github.com/isla-sym/isla/solver"
)

func main() {
	threads := flag.Int("threads", runtime.NumCPU(), "number of worker threads")
	verbose := flag.Bool("v", false, "verbose worker diagnostics")
	flag.Parse()

	level := islalog.LevelInfo
	if *verbose {
		level = islalog.LevelVerbose
	}
	log := islalog.New(os.Stderr, level)

	symtab := ir.NewSymtab()
	shared := ir.NewSharedState(symtab)

	entry := ir.Function{
		Name: 0,
		Body: []ir.Instr{
			ir.Decl(ir.RETURN, ir.BoolTy()),
			ir.Init(ir.RETURN, ir.BoolTy(), ir.BoolExp(true)),
			ir.End(),
		},
	}
	shared.DefineFunction(&entry)

	frame := ir.NewFrame(&entry, map[ir.Name]ir.Val{}, map[ir.Name]ir.Val{})
	task := engine.Task{Frame: frame}

	var mu sync.Mutex
	result := true
	collect := collector.AllUnsatCollector(&mu, &result)

	cfg := solver.Config{}
	ctx := context.Background()
	err := engine.Start(ctx, []engine.Task{task}, shared, engine.Options{
		Workers:      *threads,
		SolverConfig: cfg,
		Log:          log,
	}, collect)
	if err != nil {
		fmt.Fprintln(os.Stderr, "islarun:", err)
		os.Exit(1)
	}

	if result {
		fmt.Println("ok")
	} else {
		fmt.Println("counterexample")
		os.Exit(1)
	}
}

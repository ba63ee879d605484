// Command run sweeps MPS compilation configurations, checking the simulated
// circuit of each random instance against the exact contraction and recording
// fidelities. Finished configurations are skipped on rerun.
package main

import (
	"cmp"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"qprep"
	"qprep/circuit"
	"qprep/store"
)

var (
	runDir = flag.String("d", filepath.Join("runs", "qprep"), "run directory")
	trials = flag.Int("t", 8, "trials per configuration")
)

type Config struct {
	sites   int
	bondDim int
	trial   int
}

func (c Config) name() string {
	return fmt.Sprintf("%dx%d-%d", c.sites, c.bondDim, c.trial)
}

func newConfigs(trials int) []Config {
	configs := make([]Config, 0)
	for _, sites := range []int{3, 5, 8} {
		for _, bondDim := range []int{2, 4, 8} {
			for trial := range trials {
				configs = append(configs, Config{sites: sites, bondDim: bondDim, trial: trial})
			}
		}
	}
	return configs
}

func solve(cfg Config) (store.Run, []complex64, error) {
	m := qprep.RandMPS(cfg.sites, 2, cfg.bondDim)

	c, _, err := qprep.BuildCircuit(m)
	if err != nil {
		return store.Run{}, nil, errors.Wrap(err, "")
	}
	state := circuit.Simulate(c)
	got := qprep.Normalize(qprep.ExtractPhase(qprep.Project(state, m.PhiFinal, cfg.bondDim)))

	want, err := qprep.ContractReference(m, qprep.OrderFirstSiteLow)
	if err != nil {
		return store.Run{}, nil, errors.Wrap(err, "")
	}
	want = qprep.Normalize(qprep.ExtractPhase(want))

	run := store.Run{Name: cfg.name(), Sites: cfg.sites, BondDim: cfg.bondDim, Fidelity: overlap(got, want)}
	return run, got, nil
}

// overlap returns |<a|b>|.
func overlap(a, b []complex64) float64 {
	var re, im float64
	for i := range a {
		p := conj(complex128(a[i])) * complex128(b[i])
		re += real(p)
		im += imag(p)
	}
	return math.Hypot(re, im)
}

func conj(x complex128) complex128 {
	return complex(real(x), -imag(x))
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	if err := os.MkdirAll(*runDir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}
	st, err := store.Open(filepath.Join(*runDir, "runs.db"))
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer st.Close()

	for _, cfg := range newConfigs(*trials) {
		if _, ok, err := st.Run(cfg.name()); err != nil {
			return errors.Wrap(err, "")
		} else if ok {
			continue
		}

		run, state, err := solve(cfg)
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("%#v", cfg))
		}
		if err := st.SaveRun(run, state); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%#v", cfg))
		}
		log.Printf("%#v", run)
	}

	// Gather results and print them.
	runs, err := st.Runs()
	if err != nil {
		return errors.Wrap(err, "")
	}
	byCfg := make(map[[2]int][]float64)
	for _, r := range runs {
		k := [2]int{r.Sites, r.BondDim}
		byCfg[k] = append(byCfg[k], r.Fidelity)
	}
	keys := make([][2]int, 0, len(byCfg))
	for k := range byCfg {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b [2]int) int {
		if c := cmp.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return cmp.Compare(a[1], b[1])
	})

	fmt.Printf("sites,bond,trials,fidelity_mean,fidelity_std\n")
	for _, k := range keys {
		fs := byCfg[k]
		fmt.Printf("%d,%d,%d,%f,%f\n", k[0], k[1], len(fs), stat.Mean(fs, nil), stat.StdDev(fs, nil))
	}
	return nil
}

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"

	"tradeJournal/config"
	"tradeJournal/internal/accounting/analytics"
	"tradeJournal/internal/accounting/normalizer"
	"tradeJournal/internal/accounting/pnl"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/utils"
)

func main() {
	pattern := flag.String("glob", "exports/**/trades_*.csv", "glob matching exported trade files")
	instrumentsFile := flag.String("instruments", "", "instrument conventions YAML")
	flag.Parse()

	instruments, err := config.LoadInstruments(*instrumentsFile)
	if err != nil {
		log.Fatalf("Error loading instruments: %v", err)
	}

	files, err := findExportFiles(*pattern)
	if err != nil {
		log.Fatalf("Error finding export files: %v", err)
	}
	if len(files) == 0 {
		log.Println("No export files found. Run `tradejournal export` first.")
		return
	}

	reports := make([]fileReport, 0, len(files))
	for _, file := range files {
		report, err := analyzeFile(file, instruments)
		if err != nil {
			log.Printf("Error reading trades from %s: %v", file, err)
			continue
		}
		reports = append(reports, report)
	}

	printReports(os.Stdout, reports)
	fmt.Println("\n## By instrument")
	printInstruments(os.Stdout, reports)
}

type fileReport struct {
	File    string
	Stats   domain.PortfolioStats
	Skipped int
	ByInstr map[string]instrumentTotals
}

type instrumentTotals struct {
	Closed int
	PnL    []float64
}

// findExportFiles returns the files matching pattern, sorted by name.
func findExportFiles(pattern string) ([]string, error) {
	files, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func analyzeFile(file string, instruments *config.Instruments) (fileReport, error) {
	records, err := utils.ReadTradesFromCSV(file)
	if err != nil {
		return fileReport{}, err
	}
	trades, rejected := normalizer.NormalizeAll(records)

	options := func(t domain.Trade) pnl.Options {
		ins := instruments.Lookup(t.Instrument)
		stop := t.StopLoss
		if stop == nil {
			stop = ins.StopLoss
		}
		return pnl.Options{StopLoss: stop, Multiplier: ins.Multiplier}
	}

	byInstr := make(map[string]instrumentTotals)
	for _, t := range trades {
		if !t.IsClosed() {
			continue
		}
		totals := byInstr[t.Instrument]
		totals.Closed++
		totals.PnL = append(totals.PnL, pnl.ComputePnL(t, options(t)).PnL)
		byInstr[t.Instrument] = totals
	}

	return fileReport{
		File:    file,
		Stats:   analytics.Aggregate(trades, options),
		Skipped: len(rejected),
		ByInstr: byInstr,
	}, nil
}

func printReports(out io.Writer, reports []fileReport) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "File\tTrades\tClosed\tWinRate\tAvgWin\tAvgLoss\tNetPnL\tMaxDD\tPF\tSkipped\t")
	for _, r := range reports {
		s := r.Stats
		fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%d\t\n",
			filepath.Base(r.File),
			s.TotalTrades,
			s.ClosedTrades,
			s.WinRate,
			s.AverageWin,
			s.AverageLoss,
			s.NetPnL,
			s.MaxDrawdown,
			s.ProfitFactor,
			r.Skipped,
		)
	}
	w.Flush()
}

func printInstruments(out io.Writer, reports []fileReport) {
	merged := make(map[string]instrumentTotals)
	for _, r := range reports {
		for name, t := range r.ByInstr {
			m := merged[name]
			m.Closed += t.Closed
			m.PnL = append(m.PnL, t.PnL...)
			merged[name] = m
		}
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Instrument\tClosed\tNet PnL\tAvg PnL")
	for _, name := range names {
		t := merged[name]
		net := pnl.Sum(t.PnL)
		avg := 0.0
		if t.Closed > 0 {
			avg = net / float64(t.Closed)
		}
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\n", name, t.Closed, net, avg)
	}
	w.Flush()
}

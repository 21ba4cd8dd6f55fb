//go:build ignore

// Package main generates a synthetic document corpus for benchmarking the
// indexer, together with its partition files.
// Usage: go run scripts/generate-test-corpus.go -docs 1000 -output testdata/bench
package main

import (
	"archive/zip"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Aman-CERP/lexsearch/internal/partition"
)

var (
	numDocs    = flag.Int("docs", 1000, "Number of documents to generate")
	outputDir  = flag.String("output", "testdata/bench", "Output directory")
	partitions = flag.Int("partitions", 8, "Number of partition files")
	docxRatio  = flag.Float64("docx", 0.5, "Fraction of documents written as .docx (the rest are .txt)")
	paragraphs = flag.Int("paragraphs", 12, "Paragraphs per document")
	seed       = flag.Int64("seed", 42, "Random seed for reproducibility")
)

// Topic vocabularies give documents overlapping but distinct keyword sets.
var topics = map[string][]string{
	"finance": {"revenue", "forecast", "quarterly", "margin", "liquidity", "audit",
		"balance", "ledger", "dividend", "equity", "budget", "expenditure"},
	"legal": {"contract", "clause", "liability", "indemnity", "jurisdiction",
		"arbitration", "termination", "warranty", "compliance", "statute"},
	"engineering": {"latency", "throughput", "replication", "consensus", "cache",
		"scheduler", "protocol", "deployment", "telemetry", "partition"},
	"medicine": {"diagnosis", "clinical", "dosage", "patient", "therapy",
		"symptom", "trial", "cardiology", "oncology", "prognosis"},
	"logistics": {"shipment", "warehouse", "inventory", "supplier", "freight",
		"customs", "routing", "fulfilment", "carrier", "procurement"},
}

var fillers = []string{"the", "of", "and", "for", "with", "in", "on", "by", "from", "about"}

var verbs = []string{"improves", "requires", "reduces", "affects", "supports",
	"reviews", "describes", "tracks", "limits", "extends"}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(*seed))

	docsDir := filepath.Join(*outputDir, "docs")
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		fatal(err)
	}

	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}
	// Map order is random; keep generation reproducible.
	sort.Strings(names)

	paths := make([]string, 0, *numDocs)
	for i := 0; i < *numDocs; i++ {
		t := rng.Intn(len(names))
		topic := names[t]
		text := document(rng, topics[topic], topics[names[(t+1)%len(names)]], *paragraphs)

		var path string
		var err error
		if rng.Float64() < *docxRatio {
			path = filepath.Join(docsDir, fmt.Sprintf("%s_%05d.docx", topic, i))
			err = writeDocx(path, text)
		} else {
			path = filepath.Join(docsDir, fmt.Sprintf("%s_%05d.txt", topic, i))
			err = os.WriteFile(path, []byte(strings.Join(text, "\n\n")), 0o644)
		}
		if err != nil {
			fatal(err)
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			fatal(err)
		}
		paths = append(paths, abs)
	}

	folder := filepath.Join(*outputDir, "all")
	if _, err := partition.Write(folder, partition.DefaultPattern, *partitions, paths); err != nil {
		fatal(err)
	}

	fmt.Printf("Generated %d documents in %s\n", len(paths), docsDir)
	fmt.Printf("Wrote %d partition files to %s\n", *partitions, folder)
	fmt.Printf("Index with: lexsearch index --enumerate none (partition_folder: %s)\n", folder)
}

// document returns paragraphs of sentences mixing topic words, a few words
// of a second topic and stopwords.
func document(rng *rand.Rand, words, other []string, n int) []string {
	paras := make([]string, n)
	for p := range paras {
		sentences := make([]string, 3+rng.Intn(4))
		for s := range sentences {
			parts := []string{
				words[rng.Intn(len(words))],
				words[rng.Intn(len(words))],
				verbs[rng.Intn(len(verbs))],
				fillers[rng.Intn(len(fillers))],
				words[rng.Intn(len(words))],
			}
			if rng.Intn(4) == 0 {
				parts = append(parts, fillers[rng.Intn(len(fillers))], other[rng.Intn(len(other))])
			}
			sentence := strings.Join(parts, " ")
			sentences[s] = strings.ToUpper(sentence[:1]) + sentence[1:] + "."
		}
		paras[p] = strings.Join(sentences, " ")
	}
	return paras
}

// writeDocx writes a minimal Word document with one paragraph per entry.
func writeDocx(path string, paragraphs []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		b.WriteString(`<w:p><w:r><w:t>`)
		b.WriteString(p)
		b.WriteString(`</w:t></w:r></w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)

	if _, err := w.Write([]byte(b.String())); err != nil {
		return err
	}
	return zw.Close()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

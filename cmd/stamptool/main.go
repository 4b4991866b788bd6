// Command stamptool applies a saved annotation set to a PDF without
// opening the UI.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"signflow/internal/annotation"
	"signflow/internal/compose"
	"signflow/internal/pdfout"
	"signflow/internal/textmetric"
	"signflow/pkg/geometry"
)

func main() {
	docPath := flag.String("doc", "", "Path to the input PDF")
	itemsPath := flag.String("items", "", "Path to an annotation JSON file (array of items)")
	outPath := flag.String("out", "signed.pdf", "Path for the stamped PDF")
	scale := flag.Float64("scale", 1.0, "Editor-to-page scale the annotations were placed at")
	flag.Parse()

	if *docPath == "" || *itemsPath == "" {
		fmt.Println("Usage: stamptool -doc <in.pdf> -items <items.json> [-out <out.pdf>] [-scale <n>]")
		os.Exit(1)
	}

	doc, err := os.ReadFile(*docPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read document: %v\n", err)
		os.Exit(1)
	}

	itemData, err := os.ReadFile(*itemsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read items: %v\n", err)
		os.Exit(1)
	}
	var items []annotation.Item
	if err := json.Unmarshal(itemData, &items); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse items: %v\n", err)
		os.Exit(1)
	}

	writer := pdfout.NewWriter()
	sizes, err := writer.PageSizes(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read page sizes: %v\n", err)
		os.Exit(1)
	}

	// Annotations are stored in editor-logical units. With -scale 1
	// those are native PDF points.
	logical := make([]geometry.Size, len(sizes))
	for i, s := range sizes {
		logical[i] = geometry.NewSize(s.Width**scale, s.Height**scale)
	}

	fonts, err := textmetric.NewLibrary()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load fonts: %v\n", err)
		os.Exit(1)
	}

	model := annotation.NewModel(fonts)
	model.SetPageCount(len(sizes))
	snap := annotation.Snapshot{}
	for _, it := range items {
		snap[it.PageIndex] = append(snap[it.PageIndex], it)
	}
	model.Restore(snap)

	out, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	engine := compose.NewEngine(compose.NewRasterizer(fonts), writer)
	rep, err := engine.Compose(doc, logical, model, out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compose failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s: %d placed, %d skipped across %d pages\n",
		*outPath, rep.Placed, rep.Skipped, len(sizes))
}

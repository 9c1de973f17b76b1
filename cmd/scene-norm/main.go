// Command scene-norm computes the scene normalization (bounding sphere)
// for a camera set and optionally writes it to the JSON file the
// training loader prefers over its own per-subset computation.
package main

import (
	"flag"
	"log"

	"github.com/splatbench/sparseview/internal/nerf"
	"github.com/splatbench/sparseview/internal/scenenorm"
)

var (
	transformsPath = flag.String("transforms", "", "Path to a transforms JSON file (required)")
	outPath        = flag.String("out", "", "Write the normalization JSON here (omit to just print)")
	checkPath      = flag.String("check", "", "Compare against an existing normalization file")
)

func main() {
	flag.Parse()

	if *transformsPath == "" {
		log.Fatal("-transforms is required")
	}

	transforms, err := nerf.LoadTransforms(*transformsPath)
	if err != nil {
		log.Fatalf("load transforms: %v", err)
	}
	for i, frame := range transforms.Frames {
		if !frame.ValidTransform() {
			log.Printf("warning: frame %d (%s) has a non-rigid transform matrix", i, frame.Name())
		}
	}

	rec, err := scenenorm.ComputeValidated(transforms.Positions())
	if err != nil {
		log.Fatalf("compute normalization: %v", err)
	}
	log.Printf("%d cameras: translate=%v radius=%.6f", len(transforms.Frames), rec.Translate, rec.Radius)

	if *checkPath != "" {
		existing, err := scenenorm.Load(*checkPath)
		if err != nil {
			log.Fatalf("load %s: %v", *checkPath, err)
		}
		log.Printf("existing %s: translate=%v radius=%.6f", *checkPath, existing.Translate, existing.Radius)
		if existing != rec {
			log.Printf("MISMATCH: runs using %s are not normalized against this camera set", *checkPath)
		} else {
			log.Printf("match: %s agrees with the computed normalization", *checkPath)
		}
	}

	if *outPath != "" {
		if err := scenenorm.Save(rec, *outPath); err != nil {
			log.Fatalf("save normalization: %v", err)
		}
		log.Printf("wrote %s", *outPath)
	}
}

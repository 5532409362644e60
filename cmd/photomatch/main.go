// Command photomatch calibrates a camera from one projected aligner
// rectangle. It reads a JSON job from a file or stdin and prints the
// calibration result as JSON.
//
// Job format (pixels, origin bottom-left):
//
//	{
//	  "quad": [[x0,y0],[x1,y1],[x2,y2],[x3,y3]],
//	  "width": 1920, "height": 1080,
//	  "focal_length": 1000,          // optional, pixels
//	  "plate_distance": 10,          // optional
//	  "camera_position": [x, y, z]   // optional
//	}
//
// Edges 0-1 and 2-3 must be parallel in the scene, as must 0-2 and 1-3.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/banshee-data/photomatch/internal/calibrator"
	"github.com/banshee-data/photomatch/internal/config"
	"github.com/banshee-data/photomatch/internal/geometry"
	"github.com/banshee-data/photomatch/internal/monitoring"
	"github.com/banshee-data/photomatch/internal/vanishing"
	"github.com/banshee-data/photomatch/internal/version"
)

// Job is one calibration request.
type Job struct {
	Quad           [4][2]float64 `json:"quad"`
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	FocalLength    float64       `json:"focal_length,omitempty"`
	PlateDistance  float64       `json:"plate_distance,omitempty"`
	CameraPosition *[3]float64   `json:"camera_position,omitempty"`
}

func (j Job) quad() vanishing.Quad {
	var q vanishing.Quad
	for i, p := range j.Quad {
		q[i] = geometry.Point2D{X: p[0], Y: p[1]}
	}
	return q
}

func (j Job) host() calibrator.HostContext {
	h := calibrator.HostContext{
		Size:            geometry.ImageSize{Width: j.Width, Height: j.Height},
		OrigFocalLength: j.FocalLength,
		PlateDistance:   j.PlateDistance,
	}
	if j.CameraPosition != nil {
		h.CameraPosition = geometry.Point3D{X: j.CameraPosition[0], Y: j.CameraPosition[1], Z: j.CameraPosition[2]}
	}
	return h
}

func decodeJob(r io.Reader) (Job, error) {
	var job Job
	dec := json.NewDecoder(io.LimitReader(r, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&job); err != nil {
		return Job{}, fmt.Errorf("failed to parse job JSON: %w", err)
	}
	return job, nil
}

// loadOptions returns the calibrator options from configPath, or the
// defaults when configPath is empty.
func loadOptions(configPath string) (calibrator.Options, error) {
	if configPath == "" {
		return calibrator.DefaultOptions(), nil
	}
	cfg, err := config.LoadCalibrationConfig(configPath)
	if err != nil {
		return calibrator.Options{}, err
	}
	return cfg.CalibratorOptions(), nil
}

func run(ctx context.Context, opts calibrator.Options, in io.Reader, out io.Writer) error {
	job, err := decodeJob(in)
	if err != nil {
		return err
	}
	c, err := calibrator.New(opts)
	if err != nil {
		return err
	}
	res, err := c.SolveWithHost(ctx, job.quad(), job.host())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func main() {
	configPath := flag.String("config", "", "Path to calibration config JSON (defaults when empty)")
	jobPath := flag.String("job", "-", "Path to job JSON, or - for stdin")
	debug := flag.Bool("debug", false, "Log every corrector iteration")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("photomatch", version.String())
		return
	}

	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	monitoring.SetDebug(*debug)

	opts, err := loadOptions(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	in := io.Reader(os.Stdin)
	if *jobPath != "-" {
		f, err := os.Open(*jobPath)
		if err != nil {
			log.Fatalf("Failed to open job: %v", err)
		}
		defer f.Close()
		in = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, in, os.Stdout); err != nil {
		var se *calibrator.SolverError
		if errors.As(err, &se) {
			log.Printf("Calibration failed at stage %q", se.Stage)
		}
		log.Fatalf("photomatch: %v", err)
	}
}

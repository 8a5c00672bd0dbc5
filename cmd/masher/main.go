// Package main provides the masher CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/masher-ml/masher/internal/backend/cpu"
	"github.com/masher-ml/masher/internal/dataset"
	"github.com/masher-ml/masher/internal/nn"
	"github.com/masher-ml/masher/internal/pipeline"
	"github.com/masher-ml/masher/internal/tensor"
)

const version = "v0.1.0-dev"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return errors.New("no command given")
	}

	switch args[0] {
	case "version":
		fmt.Printf("masher %s\n", version)
		return nil
	case "augment":
		return runAugment(ctx, args[1:])
	case "help", "-h", "-help", "--help":
		usage()
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "masher - masked augmentation for fingerprint datasets")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  version    Show version")
	fmt.Fprintln(os.Stderr, "  augment    Apply an augmentation pipeline to a CSV matrix")
}

type augmentOptions struct {
	Pipeline     string
	In           string
	Out          string
	Training     bool
	Repeat       int
	KeepOriginal bool
}

func runAugment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("augment", flag.ContinueOnError)
	klog.InitFlags(fs)

	var opt augmentOptions
	fs.StringVar(&opt.Pipeline, "pipeline", "", "pipeline YAML file")
	fs.StringVar(&opt.In, "in", "", "input CSV (local path or gs://bucket/object)")
	fs.StringVar(&opt.Out, "out", "", "output CSV (local path or gs://bucket/object)")
	fs.BoolVar(&opt.Training, "training", true, "run layers in training mode (false passes data through)")
	fs.IntVar(&opt.Repeat, "repeat", 1, "number of augmented copies to stack")
	fs.BoolVar(&opt.KeepOriginal, "keep-original", false, "stack the unaugmented rows before the copies")
	if err := fs.Parse(args); err != nil {
		return err
	}
	defer klog.Flush()

	if opt.Pipeline == "" || opt.In == "" || opt.Out == "" {
		return errors.New("augment: -pipeline, -in and -out are required")
	}
	if opt.Repeat < 1 {
		return fmt.Errorf("augment: -repeat must be >= 1, got %d", opt.Repeat)
	}

	log := klog.FromContext(ctx).WithValues("run", uuid.NewString())
	ctx = klog.NewContext(ctx, log)

	spec, err := pipeline.Load(opt.Pipeline)
	if err != nil {
		return err
	}
	backend := cpu.New()
	model, err := pipeline.Build(spec, backend)
	if err != nil {
		return err
	}
	model.SetTraining(opt.Training)

	m, err := dataset.Read(ctx, opt.In)
	if err != nil {
		return err
	}
	x, err := dataset.Tensor(m, backend)
	if err != nil {
		return err
	}

	log.Info("augmenting", "pipeline", opt.Pipeline, "layers", model.Len(), "rows", m.Rows, "repeat", opt.Repeat, "training", opt.Training)

	startedAt := time.Now()
	var copies []*dataset.Matrix
	if opt.KeepOriginal {
		copies = append(copies, m)
	}
	for i := 0; i < opt.Repeat; i++ {
		y, err := forward(model, x)
		if err != nil {
			return fmt.Errorf("augment: copy %d: %w", i, err)
		}
		out, err := dataset.FromTensor(y, m.Header)
		if err != nil {
			return err
		}
		copies = append(copies, out)
	}

	result, err := dataset.Stack(copies...)
	if err != nil {
		return err
	}
	if err := dataset.Write(ctx, opt.Out, result); err != nil {
		return err
	}

	log.Info("augmented", "out", opt.Out, "rows", result.Rows, "duration", time.Since(startedAt))
	return nil
}

// forward turns a layer panic into an error.
func forward[B tensor.Backend](model nn.Module[B], x *tensor.Tensor[float32, B]) (y *tensor.Tensor[float32, B], err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	return model.Forward(x), nil
}

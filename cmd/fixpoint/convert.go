package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/pipelined/fixpoint"
	"github.com/pipelined/fixpoint/convert"
	"github.com/pipelined/fixpoint/metric"
	"github.com/pipelined/fixpoint/signal"
	"github.com/pipelined/fixpoint/wav"
)

type convertCommand struct {
	in         string
	out        string
	bufferSize int
	bitDepth   int
	raw        bool
	workers    int
}

//Implement command interface
func (cmd *convertCommand) Name() string {
	return "convert"
}

func (cmd *convertCommand) Help() string {
	return "Convert wav or raw float samples into saturated fixed-point samples"
}

func (cmd *convertCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.in, "in", "", "input file to convert (required)")
	fs.StringVar(&cmd.out, "out", "", "output file to save converted samples (required)")
	fs.IntVar(&cmd.bufferSize, "buffer", 512, "number of frames processed at once")
	fs.IntVar(&cmd.bitDepth, "depth", 32, "output wav bit depth: 16, 24 or 32")
	fs.BoolVar(&cmd.raw, "raw", false, "convert little-endian float32 samples into little-endian int32 samples without scaling")
	fs.IntVar(&cmd.workers, "workers", 1, "number of goroutines converting every raw buffer")
}

func (cmd *convertCommand) Run(ctx context.Context, logger logrus.FieldLogger) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	inFile, err := os.Open(cmd.in)
	if err != nil {
		return err
	}
	defer inFile.Close()
	outFile, err := os.Create(cmd.out)
	if err != nil {
		return err
	}
	defer outFile.Close()

	var l fixpoint.Line[float32, int32]
	bufferSize := cmd.bufferSize
	if cmd.raw {
		logger.WithField("workers", cmd.workers).Info("converting raw samples")
		l = fixpoint.Line[float32, int32]{
			Source:    rawSource(inFile),
			Processor: convert.Int32(convert.WithWorkers(cmd.workers)),
			Sink:      rawSink(outFile),
		}
	} else {
		source, err := wav.NewSource(inFile)
		if err != nil {
			return fmt.Errorf("%s: %w", cmd.in, err)
		}
		bitDepth := signal.BitDepth(cmd.bitDepth)
		logger.WithFields(logrus.Fields{
			"sample_rate":  source.SampleRate(),
			"channels":     source.NumChannels(),
			"in_bit_depth": source.BitDepth(),
			"in_float":     source.Float(),
			"bit_depth":    bitDepth,
		}).Info("converting")
		l = fixpoint.Line[float32, int32]{
			Source:    source.Source(),
			Processor: convert.BitDepth(bitDepth, convert.WithFormat(source.SampleRate(), source.NumChannels())),
			Sink:      wav.Sink(outFile, source.SampleRate(), source.NumChannels(), bitDepth),
		}
		bufferSize *= source.NumChannels()
	}

	r, err := l.Run(ctx, bufferSize, fixpoint.WithLogger(logger), fixpoint.WithName(cmd.Name()))
	if err != nil {
		return err
	}
	if err := r.Wait(); err != nil {
		return err
	}
	for component, counters := range metric.GetAll() {
		logger.WithField("component", component).WithFields(toFields(counters)).Info("converted")
	}
	return outFile.Close()
}

func (cmd *convertCommand) Validate() error {
	var errs []error
	if cmd.in == "" {
		errs = append(errs, errors.New("missing -in required flag"))
	}
	if cmd.out == "" {
		errs = append(errs, errors.New("missing -out required flag"))
	}
	if cmd.bufferSize <= 0 {
		errs = append(errs, fmt.Errorf("invalid -buffer value: %d", cmd.bufferSize))
	}
	if cmd.workers <= 0 {
		errs = append(errs, fmt.Errorf("invalid -workers value: %d", cmd.workers))
	}
	return errors.Join(errs...)
}

func toFields(counters map[string]string) logrus.Fields {
	fields := make(logrus.Fields, len(counters))
	for k, v := range counters {
		fields[k] = v
	}
	return fields
}
